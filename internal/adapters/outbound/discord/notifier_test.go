package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/mplid-predictor/internal/events"
)

func hook(t *testing.T, status int) (*httptest.Server, chan webhookPayload) {
	t.Helper()
	got := make(chan webhookPayload, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		got <- p
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestSendEmbedStampsTimestamp(t *testing.T) {
	srv, got := hook(t, http.StatusNoContent)
	n := NewNotifier(srv.URL)
	require.NoError(t, n.SendEmbed(context.Background(), Embed{Title: "x"}))

	p := <-got
	require.Len(t, p.Embeds, 1)
	assert.Equal(t, "x", p.Embeds[0].Title)
	assert.NotEmpty(t, p.Embeds[0].Timestamp)
}

func TestSendStatusErrors(t *testing.T) {
	srv, _ := hook(t, http.StatusTooManyRequests)
	assert.ErrorIs(t, NewNotifier(srv.URL).SendText(context.Background(), "hi"), ErrRateLimited)

	srv, _ = hook(t, http.StatusBadRequest)
	assert.Error(t, NewNotifier(srv.URL).SendText(context.Background(), "hi"))
}

func TestDisabledNotifierIsSilent(t *testing.T) {
	n := NewNotifier("")
	assert.False(t, n.Enabled())
	assert.NoError(t, n.SendText(context.Background(), "hi"))
}

func TestWatchPostsFailuresAndRecovery(t *testing.T) {
	srv, got := hook(t, http.StatusNoContent)
	bus := events.NewBus()
	NewNotifier(srv.URL).Watch(bus)

	next := func() webhookPayload {
		select {
		case p := <-got:
			return p
		case <-time.After(2 * time.Second):
			t.Fatal("no webhook post")
			return webhookPayload{}
		}
	}

	bus.Publish(events.New(events.EventSyncCompleted, events.SyncCompletedEvent{Season: "S16"}))
	bus.Publish(events.New(events.EventSyncFailed, events.SyncFailedEvent{RunID: "r1", Season: "S16", Error: "upstream 503"}))
	p := next()
	require.Len(t, p.Embeds, 1)
	assert.Equal(t, ColorRed, p.Embeds[0].Color)
	assert.Equal(t, "upstream 503", p.Embeds[0].Description)

	bus.Publish(events.New(events.EventSyncCompleted, events.SyncCompletedEvent{Season: "S16", Teams: 9}))
	p = next()
	assert.Equal(t, ColorGreen, p.Embeds[0].Color)
	assert.Contains(t, p.Embeds[0].Title, "recovered")

	bus.Publish(events.New(events.EventSyncCompleted, events.SyncCompletedEvent{Season: "S16"}))
	select {
	case p := <-got:
		t.Fatalf("unexpected post %+v", p)
	case <-time.After(100 * time.Millisecond):
	}
}
