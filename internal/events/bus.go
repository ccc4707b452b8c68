package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(PostCreatedEvent{...})
func (b *Bus) Publish(ev Event) {
	// Use type switch to call the generic Publish with the correct type
	switch e := ev.(type) {
	case PostCreatedEvent:
		event.Publish(b.dispatcher, e)
	case PostDeletedEvent:
		event.Publish(b.dispatcher, e)
	case CommentCreatedEvent:
		event.Publish(b.dispatcher, e)
	case CommentDeletedEvent:
		event.Publish(b.dispatcher, e)
	case StoreReloadedEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives (type inference)
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e PostCreatedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	// For each known event type, check if the handler matches
	switch h := handler.(type) {
	case func(PostCreatedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PostDeletedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CommentCreatedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CommentDeletedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StoreReloadedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
