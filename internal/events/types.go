package events

// Event type constants for kelindar/event.
const (
	TypePostCreated uint32 = iota + 1
	TypePostDeleted
	TypeCommentCreated
	TypeCommentDeleted
	TypeStoreReloaded
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// PostCreatedEvent is published when a post is added to the feed.
type PostCreatedEvent struct {
	PostID    string `json:"post_id" example:"6b1a52f0-6c2a-4c6e-9a6e-66d1a0b7e2a4" doc:"Identifier of the new post"`
	Username  string `json:"username" example:"ada" doc:"Author of the post"`
	Timestamp string `json:"timestamp" example:"2025-08-23T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PostCreatedEvent.
func (e PostCreatedEvent) Type() uint32 { return TypePostCreated }

// PostDeletedEvent is published when a post is removed from the feed.
type PostDeletedEvent struct {
	PostID    string `json:"post_id" example:"6b1a52f0-6c2a-4c6e-9a6e-66d1a0b7e2a4" doc:"Identifier of the deleted post"`
	Timestamp string `json:"timestamp" example:"2025-08-23T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PostDeletedEvent.
func (e PostDeletedEvent) Type() uint32 { return TypePostDeleted }

// CommentCreatedEvent is published when a comment is added to a post.
type CommentCreatedEvent struct {
	PostID    string `json:"post_id" example:"6b1a52f0-6c2a-4c6e-9a6e-66d1a0b7e2a4" doc:"Post the comment belongs to"`
	CommentID string `json:"comment_id" example:"1f0f6a7e-2f4b-4f43-8f0a-1f60b3a0c9d2" doc:"Identifier of the new comment"`
	Username  string `json:"username" example:"grace" doc:"Author of the comment"`
	Timestamp string `json:"timestamp" example:"2025-08-23T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CommentCreatedEvent.
func (e CommentCreatedEvent) Type() uint32 { return TypeCommentCreated }

// CommentDeletedEvent is published when a comment is removed from a post.
type CommentDeletedEvent struct {
	PostID    string `json:"post_id" example:"6b1a52f0-6c2a-4c6e-9a6e-66d1a0b7e2a4" doc:"Post the comment belonged to"`
	CommentID string `json:"comment_id" example:"1f0f6a7e-2f4b-4f43-8f0a-1f60b3a0c9d2" doc:"Identifier of the deleted comment"`
	Timestamp string `json:"timestamp" example:"2025-08-23T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CommentDeletedEvent.
func (e CommentDeletedEvent) Type() uint32 { return TypeCommentDeleted }

// StoreReloadedEvent is published after the database file changed on disk
// and the in-memory store swapped in the new contents. Browser clients use
// it to refresh their view without polling.
type StoreReloadedEvent struct {
	Posts     int    `json:"posts" example:"12" doc:"Number of posts after the reload"`
	Timestamp string `json:"timestamp" example:"2025-08-23T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StoreReloadedEvent.
func (e StoreReloadedEvent) Type() uint32 { return TypeStoreReloaded }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-08-23T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"api" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
