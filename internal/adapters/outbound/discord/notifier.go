// Package discord posts sync alerts to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charleschow/mplid-predictor/internal/events"
	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

const (
	ColorGreen = 0x2ECC71
	ColorRed   = 0xE74C3C
)

var ErrRateLimited = errors.New("discord rate limited")

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Notifier is a no-op when constructed with an empty URL.
type Notifier struct {
	webhookURL string
	httpClient *http.Client

	mu      sync.Mutex
	failing bool
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

// Watch alerts on every failed sync and on the first success after one.
// Posts run off the publisher's goroutine.
func (n *Notifier) Watch(bus *events.Bus) {
	if !n.Enabled() {
		return
	}
	bus.SubscribeTopic(func(e events.Event) error {
		embed, ok := n.embedFor(e)
		if !ok {
			return nil
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := n.SendEmbed(ctx, embed); err != nil {
				telemetry.Warnf("discord: %v", err)
			}
		}()
		return nil
	}, events.TopicSync)
}

// embedFor tracks the failing state and decides whether e is worth a post.
func (n *Notifier) embedFor(e events.Event) (Embed, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch p := e.Payload.(type) {
	case events.SyncFailedEvent:
		n.failing = true
		return SyncFailed(p), true
	case events.SyncCompletedEvent:
		if !n.failing {
			return Embed{}, false
		}
		n.failing = false
		return SyncRecovered(p), true
	}
	return Embed{}, false
}

func SyncFailed(p events.SyncFailedEvent) Embed {
	return Embed{
		Title:       fmt.Sprintf("Sync failed (%s)", p.Season),
		Description: p.Error,
		Color:       ColorRed,
		Fields:      []Field{{Name: "Run", Value: p.RunID}},
	}
}

func SyncRecovered(p events.SyncCompletedEvent) Embed {
	return Embed{
		Title: fmt.Sprintf("Sync recovered (%s)", p.Season),
		Color: ColorGreen,
		Fields: []Field{
			{Name: "Teams", Value: fmt.Sprint(p.Teams), Inline: true},
			{Name: "Standings", Value: fmt.Sprint(p.Standings), Inline: true},
			{Name: "Team stats", Value: fmt.Sprint(p.TeamStats), Inline: true},
			{Name: "Took", Value: fmt.Sprintf("%dms", p.DurationMS), Inline: true},
		},
	}
}

func (n *Notifier) SendText(ctx context.Context, msg string) error {
	return n.send(ctx, webhookPayload{Content: msg})
}

func (n *Notifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}
	return nil
}
