package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope that flows through the event bus.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// New stamps a payload with a fresh ID and the current time.
func New(t EventType, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

type EventType string

const (
	// Sync store
	EventSyncCompleted EventType = "sync_completed"
	EventSyncFailed    EventType = "sync_failed"
	// HTTP API
	EventPredictionServed EventType = "prediction_served"
)

// Topic groups event types for websocket subscribers.
type Topic string

const (
	TopicAll         Topic = "all"
	TopicSync        Topic = "sync"
	TopicPredictions Topic = "predictions"
)

func (t EventType) Topic() Topic {
	switch t {
	case EventSyncCompleted, EventSyncFailed:
		return TopicSync
	case EventPredictionServed:
		return TopicPredictions
	}
	return TopicAll
}

// AllTypes lists every event the system publishes.
var AllTypes = []EventType{EventSyncCompleted, EventSyncFailed, EventPredictionServed}

// Types lists the event types delivered on t.
func (t Topic) Types() []EventType {
	var out []EventType
	for _, et := range AllTypes {
		if t.Matches(et) {
			out = append(out, et)
		}
	}
	return out
}

// Matches reports whether a subscriber on topic should see events of t.
func (t Topic) Matches(et EventType) bool {
	return t == TopicAll || t == "" || et.Topic() == t
}
