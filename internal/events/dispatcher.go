package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler reacts to a published event. Handlers run synchronously on the
// publisher's goroutine; a slow handler stalls the publisher, not the app.
type Handler func(context.Context, Event)

// Dispatcher is the subscription mechanism for session and deal readers.
type Dispatcher interface {
	Publish(ctx context.Context, eventType EventType, payload any)
	Subscribe(eventType EventType, handler Handler)
}

type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]Handler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]Handler),
	}
}

// Publish invokes every handler registered for the event type. All handlers
// run even if earlier ones misbehave; there is nothing to propagate back.
func (d *inMemoryDispatcher) Publish(ctx context.Context, eventType EventType, payload any) {
	d.mu.RLock()
	handlers := append([]Handler{}, d.listeners[eventType]...)
	d.mu.RUnlock()

	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	for _, handler := range handlers {
		handler(ctx, event)
	}
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
