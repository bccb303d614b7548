package fanout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/mplid-predictor/internal/events"
)

func startServer(t *testing.T) (*events.Bus, *Server, *httptest.Server) {
	t.Helper()
	bus := events.NewBus()
	srv := NewServer(bus)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", srv.HandleWS)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return bus, srv, ts
}

func dial(t *testing.T, ts *httptest.Server, topic string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?topic=" + topic
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRoundTrip(t *testing.T) {
	in := events.New(events.EventPredictionServed, events.PredictionServedEvent{
		PredictionID: "p1", TeamA: "onic", TeamB: "rrq", ProbA: 0.7, ProbB: 0.3,
	})
	data, err := MarshalEvent(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"topic":"predictions"`)

	out, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Payload, out.Payload)

	_, err = UnmarshalEvent([]byte(`{"type":"nope","payload":{}}`))
	assert.ErrorContains(t, err, "unknown event type")
}

func TestServerFiltersByTopic(t *testing.T) {
	bus, srv, ts := startServer(t)
	syncConn := dial(t, ts, "sync")
	allConn := dial(t, ts, "")
	require.Eventually(t, func() bool { return srv.Clients() == 2 }, time.Second, 10*time.Millisecond)

	bus.Publish(events.New(events.EventPredictionServed, events.PredictionServedEvent{TeamA: "onic", TeamB: "rrq"}))
	bus.Publish(events.New(events.EventSyncCompleted, events.SyncCompletedEvent{Season: "S16", Teams: 9}))

	read := func(c *websocket.Conn) events.Event {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := c.ReadMessage()
		require.NoError(t, err)
		evt, err := UnmarshalEvent(msg)
		require.NoError(t, err)
		return evt
	}

	assert.Equal(t, events.EventSyncCompleted, read(syncConn).Type, "sync subscribers skip predictions")
	assert.Equal(t, events.EventPredictionServed, read(allConn).Type)
	assert.Equal(t, events.EventSyncCompleted, read(allConn).Type)
}

func TestServerRejectsUnknownTopic(t *testing.T) {
	_, _, ts := startServer(t)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?topic=odds"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestClientRepublishesOntoLocalBus(t *testing.T) {
	remote, srv, ts := startServer(t)

	local := events.NewBus()
	var mu sync.Mutex
	var got []events.SyncCompletedEvent
	local.Subscribe(func(e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Payload.(events.SyncCompletedEvent))
		return nil
	}, events.EventSyncCompleted)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewClient(strings.TrimPrefix(ts.URL, "http://"), events.TopicSync, local).ConnectWithRetry(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return srv.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	remote.Publish(events.New(events.EventSyncCompleted, events.SyncCompletedEvent{Season: "S16", Teams: 9}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 9, got[0].Teams)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop on cancel")
	}
}
