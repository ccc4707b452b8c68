package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan PostCreatedEvent, 1)

	unsub := bus.Subscribe(func(e PostCreatedEvent) {
		received <- e
	})
	defer unsub()

	event := PostCreatedEvent{
		PostID:    "post-1",
		Username:  "ada",
		Timestamp: "2025-08-23T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.PostID != event.PostID {
		t.Errorf("Expected post_id %s, got %s", event.PostID, got.PostID)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan StoreReloadedEvent, 1)
	received2 := make(chan StoreReloadedEvent, 1)

	unsub1 := bus.Subscribe(func(e StoreReloadedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e StoreReloadedEvent) {
		received2 <- e
	})
	defer unsub2()

	event := StoreReloadedEvent{Posts: 3}
	bus.Publish(event)

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan PostDeletedEvent, 1)

	unsub := bus.Subscribe(func(e PostDeletedEvent) {
		received <- e
	})

	bus.Publish(PostDeletedEvent{PostID: "post-1"})
	<-received

	unsub()

	bus.Publish(PostDeletedEvent{PostID: "post-2"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	postReceived := make(chan bool, 1)
	commentReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ PostCreatedEvent) {
		postReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ CommentCreatedEvent) {
		commentReceived <- true
	})
	defer unsub2()

	// Publish PostCreatedEvent
	bus.Publish(PostCreatedEvent{PostID: "post-1"})
	<-postReceived

	select {
	case <-commentReceived:
		t.Fatal("Comment subscriber should NOT have received PostCreatedEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}

	// Publish CommentCreatedEvent
	bus.Publish(CommentCreatedEvent{PostID: "post-1", CommentID: "comment-1"})
	<-commentReceived

	select {
	case <-postReceived:
		t.Fatal("Post subscriber should NOT have received CommentCreatedEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ LogEntryEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(LogEntryEvent{
					Level:     "info",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	// Read all expected events
	for range expected {
		<-receivedCh
	}
}

func TestBus_AllEventTypes(t *testing.T) {
	bus := New()

	tests := []struct {
		name  string
		event Event
	}{
		{"PostCreated", PostCreatedEvent{PostID: "post-1"}},
		{"PostDeleted", PostDeletedEvent{PostID: "post-1"}},
		{"CommentCreated", CommentCreatedEvent{PostID: "post-1", CommentID: "comment-1"}},
		{"CommentDeleted", CommentDeletedEvent{PostID: "post-1", CommentID: "comment-1"}},
		{"StoreReloaded", StoreReloadedEvent{Posts: 1}},
		{"LogEntry", LogEntryEvent{Level: "info"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(_ *testing.T) {
			received := make(chan Event, 1)

			var unsub func()
			switch tt.event.(type) {
			case PostCreatedEvent:
				unsub = bus.Subscribe(func(e PostCreatedEvent) { received <- e })
			case PostDeletedEvent:
				unsub = bus.Subscribe(func(e PostDeletedEvent) { received <- e })
			case CommentCreatedEvent:
				unsub = bus.Subscribe(func(e CommentCreatedEvent) { received <- e })
			case CommentDeletedEvent:
				unsub = bus.Subscribe(func(e CommentDeletedEvent) { received <- e })
			case StoreReloadedEvent:
				unsub = bus.Subscribe(func(e StoreReloadedEvent) { received <- e })
			case LogEntryEvent:
				unsub = bus.Subscribe(func(e LogEntryEvent) { received <- e })
			}
			defer unsub()

			bus.Publish(tt.event)
			<-received
		})
	}
}

func TestEventJSONSerialization(t *testing.T) {
	tests := []struct {
		name  string
		event any
	}{
		{
			"PostCreatedEvent",
			PostCreatedEvent{
				PostID:    "post-1",
				Username:  "ada",
				Timestamp: "2025-08-23T10:30:00Z",
			},
		},
		{
			"StoreReloadedEvent",
			StoreReloadedEvent{
				Posts:     12,
				Timestamp: "2025-08-23T10:30:00Z",
			},
		},
		{
			"LogEntryEvent",
			LogEntryEvent{
				Seq:       7,
				Level:     "warn",
				Module:    "store",
				Message:   "reload failed",
				Timestamp: "2025-08-23T10:30:00Z",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("Failed to marshal: %v", err)
			}

			var result map[string]any
			if unmarshalErr := json.Unmarshal(data, &result); unmarshalErr != nil {
				t.Fatalf("Failed to unmarshal: %v", unmarshalErr)
			}

			if len(result) == 0 {
				t.Fatal("Unmarshaled to empty object")
			}
		})
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 10)

	unsub := SubscribeToChannel[PostCreatedEvent](bus, ch)
	defer unsub()

	event := PostCreatedEvent{
		PostID:   "post-1",
		Username: "ada",
	}
	bus.Publish(event)

	received := <-ch
	postEvent, ok := received.(PostCreatedEvent)
	if !ok {
		t.Fatalf("Expected PostCreatedEvent, got %T", received)
	}
	if postEvent.PostID != event.PostID {
		t.Errorf("Expected post_id %s, got %s", event.PostID, postEvent.PostID)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any) // No buffer

	unsub := SubscribeToChannel[StoreReloadedEvent](bus, ch)
	defer unsub()

	done := make(chan bool, 1)
	go func() {
		bus.Publish(StoreReloadedEvent{Posts: 1})
		done <- true
	}()

	<-done // Should complete without blocking
}
