// Package store provides JSON file persistence for the feed.
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"molt/internal/feed"
	"molt/internal/logging"
)

// JSONStore implements feed.Store backed by a single JSON file.
// Every mutation writes through to disk so the database survives restarts
// and stays hand-editable. The file digest is tracked so reloads triggered
// by our own writes are recognized as no-ops.
type JSONStore struct {
	path   string
	mu     sync.RWMutex
	posts  map[string]feed.Post
	digest [sha256.Size]byte
	logger *slog.Logger
}

var _ feed.Store = (*JSONStore)(nil)

// NewJSON creates a new JSON-backed store.
func NewJSON(path string) *JSONStore {
	if path == "" {
		path = "db.json"
	}

	return &JSONStore{
		path:   path,
		posts:  make(map[string]feed.Post),
		logger: logging.GetLogger("store"),
	}
}

// Path returns the database file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the database from file. A missing file is not an error:
// an empty database is written so file watchers have something to attach to.
func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.posts = make(map[string]feed.Post)
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	posts, err := decode(data)
	if err != nil {
		return fmt.Errorf("failed to parse database: %w", err)
	}

	s.posts = posts
	s.digest = sha256.Sum256(data)
	return nil
}

// Reload re-reads the database file and swaps in the new contents.
// Returns true when the file actually differed from the in-memory state,
// false when the contents are unchanged (such as after our own writes).
func (s *JSONStore) Reload() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("failed to read database: %w", err)
	}
	digest := sha256.Sum256(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if digest == s.digest {
		return false, nil
	}

	posts, err := decode(data)
	if err != nil {
		return false, fmt.Errorf("failed to parse database: %w", err)
	}

	s.posts = posts
	s.digest = digest
	s.logger.Info("Database reloaded from disk", "posts", len(posts))
	return true, nil
}

// Posts returns copies of all posts in unspecified order.
func (s *JSONStore) Posts() []feed.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]feed.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, clonePost(p))
	}
	return posts
}

// Get retrieves a post by ID.
func (s *JSONStore) Get(id string) (feed.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return feed.Post{}, false
	}
	return clonePost(p), true
}

// Put inserts or replaces a post and writes through to disk.
func (s *JSONStore) Put(post feed.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts[post.ID] = clonePost(post)
	return s.saveLocked()
}

// Delete removes a post and writes through to disk.
func (s *JSONStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, id)
	return s.saveLocked()
}

// Count returns the number of posts.
func (s *JSONStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// saveLocked writes the database to disk. Caller must hold the write lock.
func (s *JSONStore) saveLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	data, err := json.MarshalIndent(s.posts, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal database: %w", err)
	}

	if writeErr := os.WriteFile(s.path, data, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write database: %w", writeErr)
	}

	s.digest = sha256.Sum256(data)
	return nil
}

// decode parses database bytes. An empty file counts as an empty database.
func decode(data []byte) (map[string]feed.Post, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]feed.Post), nil
	}

	var posts map[string]feed.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = make(map[string]feed.Post)
	}
	return posts, nil
}

// clonePost copies a post including its comments slice so callers never
// alias the store's internal state. Comments are normalized to an empty
// slice so they marshal as [] rather than null.
func clonePost(p feed.Post) feed.Post {
	comments := make([]feed.Comment, len(p.Comments))
	copy(comments, p.Comments)
	p.Comments = comments
	return p
}
