package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"molt/internal/events"
	"molt/internal/logging"
	"molt/internal/metrics"
)

// FeedService defines the interface for feed operations
type FeedService interface {
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, postID string) (*Post, error)
	CreatePost(ctx context.Context, params PostCreateParams) (*Post, error)
	DeletePost(ctx context.Context, postID, username string) error
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	CreateComment(ctx context.Context, postID string, params CommentCreateParams) (*Comment, error)
	DeleteComment(ctx context.Context, postID, commentID, username string) error
}

// PostCreateParams contains the fields required to create a post
type PostCreateParams struct {
	Message  string
	Username string
}

// CommentCreateParams contains the fields required to create a comment
type CommentCreateParams struct {
	Message  string
	Username string
}

// FeedServiceImpl implements the FeedService interface
type FeedServiceImpl struct {
	store    Store
	eventBus *events.Bus
	logger   *slog.Logger
}

// NewFeedService creates a new feed service backed by the given store.
// The event bus is optional; when nil no events are published.
func NewFeedService(store Store, eventBus *events.Bus) FeedService {
	return &FeedServiceImpl{
		store:    store,
		eventBus: eventBus,
		logger:   logging.GetLogger("feed"),
	}
}

// ListPosts returns all posts, newest first.
func (s *FeedServiceImpl) ListPosts(ctx context.Context) ([]Post, error) {
	posts := s.store.Posts()
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})
	return posts, nil
}

// GetPost returns a single post by ID.
func (s *FeedServiceImpl) GetPost(ctx context.Context, postID string) (*Post, error) {
	post, ok := s.store.Get(postID)
	if !ok {
		return nil, NewFeedError(ErrCodePostNotFound,
			fmt.Sprintf("post %s not found", postID), nil)
	}
	return &post, nil
}

// CreatePost validates the params and stores a new post.
func (s *FeedServiceImpl) CreatePost(ctx context.Context, params PostCreateParams) (*Post, error) {
	if strings.TrimSpace(params.Message) == "" {
		return nil, NewFeedError(ErrCodeInvalidParams, "message is required", nil)
	}
	if strings.TrimSpace(params.Username) == "" {
		return nil, NewFeedError(ErrCodeInvalidParams, "username is required", nil)
	}

	post := Post{
		ID:        uuid.NewString(),
		Message:   params.Message,
		Username:  params.Username,
		Timestamp: time.Now(),
		Comments:  []Comment{},
	}

	if err := s.store.Put(post); err != nil {
		return nil, NewFeedError(ErrCodeStorageError, "failed to save post", err)
	}

	s.logger.Info("Post created", "post_id", post.ID, "username", post.Username)
	metrics.SetStorePosts(s.store.Count())

	if s.eventBus != nil {
		s.eventBus.Publish(events.PostCreatedEvent{
			PostID:    post.ID,
			Username:  post.Username,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	return &post, nil
}

// DeletePost removes a post. Only the author may delete it.
func (s *FeedServiceImpl) DeletePost(ctx context.Context, postID, username string) error {
	post, ok := s.store.Get(postID)
	if !ok {
		return NewFeedError(ErrCodePostNotFound,
			fmt.Sprintf("post %s not found", postID), nil)
	}

	if post.Username != username {
		return NewFeedError(ErrCodeUnauthorized,
			"only the author can delete this post", nil)
	}

	if err := s.store.Delete(postID); err != nil {
		return NewFeedError(ErrCodeStorageError, "failed to delete post", err)
	}

	s.logger.Info("Post deleted", "post_id", postID, "username", username)
	metrics.SetStorePosts(s.store.Count())

	if s.eventBus != nil {
		s.eventBus.Publish(events.PostDeletedEvent{
			PostID:    postID,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	return nil
}

// ListComments returns the comments of a post, oldest first.
func (s *FeedServiceImpl) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	post, ok := s.store.Get(postID)
	if !ok {
		return nil, NewFeedError(ErrCodePostNotFound,
			fmt.Sprintf("post %s not found", postID), nil)
	}

	// Comments are stored in insertion order already
	comments := make([]Comment, len(post.Comments))
	copy(comments, post.Comments)
	return comments, nil
}

// CreateComment validates the params and appends a comment to a post.
func (s *FeedServiceImpl) CreateComment(ctx context.Context, postID string, params CommentCreateParams) (*Comment, error) {
	if strings.TrimSpace(params.Message) == "" {
		return nil, NewFeedError(ErrCodeInvalidParams, "message is required", nil)
	}
	if strings.TrimSpace(params.Username) == "" {
		return nil, NewFeedError(ErrCodeInvalidParams, "username is required", nil)
	}

	post, ok := s.store.Get(postID)
	if !ok {
		return nil, NewFeedError(ErrCodePostNotFound,
			fmt.Sprintf("post %s not found", postID), nil)
	}

	comment := Comment{
		ID:        uuid.NewString(),
		Message:   params.Message,
		Username:  params.Username,
		Timestamp: time.Now(),
	}
	post.Comments = append(post.Comments, comment)

	if err := s.store.Put(post); err != nil {
		return nil, NewFeedError(ErrCodeStorageError, "failed to save comment", err)
	}

	s.logger.Info("Comment created", "post_id", postID, "comment_id", comment.ID, "username", comment.Username)

	if s.eventBus != nil {
		s.eventBus.Publish(events.CommentCreatedEvent{
			PostID:    postID,
			CommentID: comment.ID,
			Username:  comment.Username,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	return &comment, nil
}

// DeleteComment removes a comment from a post. Only the comment author
// may delete it.
func (s *FeedServiceImpl) DeleteComment(ctx context.Context, postID, commentID, username string) error {
	post, ok := s.store.Get(postID)
	if !ok {
		return NewFeedError(ErrCodePostNotFound,
			fmt.Sprintf("post %s not found", postID), nil)
	}

	idx := -1
	for i, c := range post.Comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NewFeedError(ErrCodeCommentNotFound,
			fmt.Sprintf("comment %s not found", commentID), nil)
	}

	if post.Comments[idx].Username != username {
		return NewFeedError(ErrCodeUnauthorized,
			"only the author can delete this comment", nil)
	}

	post.Comments = append(post.Comments[:idx], post.Comments[idx+1:]...)

	if err := s.store.Put(post); err != nil {
		return NewFeedError(ErrCodeStorageError, "failed to delete comment", err)
	}

	s.logger.Info("Comment deleted", "post_id", postID, "comment_id", commentID, "username", username)

	if s.eventBus != nil {
		s.eventBus.Publish(events.CommentDeletedEvent{
			PostID:    postID,
			CommentID: commentID,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	return nil
}
