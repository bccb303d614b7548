package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/mplid-predictor/internal/events"
)

// Envelope is the wire format for events sent over the fanout WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Topic     events.Topic    `json:"topic"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		Topic:     evt.Type.Topic(),
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventSyncCompleted:
		var sc events.SyncCompletedEvent
		if err := json.Unmarshal(env.Payload, &sc); err != nil {
			return evt, fmt.Errorf("unmarshal sync_completed: %w", err)
		}
		evt.Payload = sc
	case events.EventSyncFailed:
		var sf events.SyncFailedEvent
		if err := json.Unmarshal(env.Payload, &sf); err != nil {
			return evt, fmt.Errorf("unmarshal sync_failed: %w", err)
		}
		evt.Payload = sf
	case events.EventPredictionServed:
		var ps events.PredictionServedEvent
		if err := json.Unmarshal(env.Payload, &ps); err != nil {
			return evt, fmt.Errorf("unmarshal prediction_served: %w", err)
		}
		evt.Payload = ps
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}

	return evt, nil
}
