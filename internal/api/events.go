package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"molt/internal/events"
	"molt/internal/logging"
	"molt/internal/metrics"
)

// logReplayCount is how many buffered log entries a new client receives
// before live streaming starts.
const logReplayCount = 50

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	// Register SSE endpoint with event type mapping
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for feed changes, database reloads, and server logs. Replays recent logs first, then streams live events.",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"post-created":    events.PostCreatedEvent{},
		"post-deleted":    events.PostDeletedEvent{},
		"comment-created": events.CommentCreatedEvent{},
		"comment-deleted": events.CommentDeletedEvent{},
		"store-reloaded":  events.StoreReloadedEvent{},
		"log":             events.LogEntryEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		metrics.AddSSEClient()
		defer metrics.RemoveSSEClient()

		// Send initial connection confirmation. Seq 0 marks it as
		// synthetic, real entries start at 1.
		if err := send.Data(events.LogEntryEvent{
			Seq:       0,
			Timestamp: time.Now().Format(time.RFC3339Nano),
			Level:     "info",
			Module:    "api",
			Message:   "event stream connected",
		}); err != nil {
			return
		}

		// Replay recent logs from the ring buffer. Entries carry
		// sequence numbers so clients can drop duplicates against the
		// live stream.
		buffer := logging.GetBuffer()
		if buffer != nil {
			for _, entry := range buffer.ReadLast(logReplayCount) {
				event := events.LogEntryEvent{
					Seq:        entry.Seq,
					Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
					Level:      entry.Level,
					Module:     entry.Module,
					Message:    entry.Message,
					Attributes: entry.Attributes,
				}
				if err := send.Data(event); err != nil {
					return
				}
			}
		}

		// Create event channel for this connection
		eventCh := make(chan any, 100)

		// Subscribe to all event types using event bus
		unsubscribers := []func(){
			events.SubscribeToChannel[events.PostCreatedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PostDeletedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CommentCreatedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CommentDeletedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.StoreReloadedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Keep connection alive and forward events
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				// Send event using Huma's SSE sender with error handling
				if err := send.Data(event); err != nil {
					// Connection failed, clean up and exit
					return
				}
			}
		}
	})
}
