package events

import (
	"sync"

	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

// Handler reacts to one event. An error is logged and dispatch continues.
type Handler func(Event) error

// Bus delivers events synchronously, on the publisher's goroutine, in the
// order handlers subscribed. Slow handlers must hand off to their own
// goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers h for each listed type. No types means no delivery.
func (b *Bus) Subscribe(h Handler, types ...EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range types {
		b.handlers[t] = append(b.handlers[t], h)
	}
}

// SubscribeTopic registers h for every type in topic.
func (b *Bus) SubscribeTopic(h Handler, topic Topic) {
	b.Subscribe(h, topic.Types()...)
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers[e.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(e); err != nil {
			telemetry.Warnf("events: %s handler: %v", e.Type, err)
		}
	}
}
