// Package feed implements the microblog domain: posts with threaded
// comments, persisted through a pluggable store and broadcast over the
// event bus.
package feed

import "time"

// Post is a single feed entry. Comments keep insertion order, oldest first.
type Post struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	Comments  []Comment `json:"comments"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the persistence boundary for posts. Implementations must be
// safe for concurrent use.
type Store interface {
	Posts() []Post
	Get(id string) (Post, bool)
	Put(post Post) error
	Delete(id string) error
	Count() int
}
