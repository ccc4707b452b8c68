package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"molt/internal/api/models"
	"molt/internal/feed"
)

// registerPostRoutes registers all post and comment endpoints
func (s *Server) registerPostRoutes() {
	// List posts, newest first
	huma.Register(s.api, huma.Operation{
		OperationID: "list-posts",
		Method:      http.MethodGet,
		Path:        "/api/posts",
		Summary:     "List Posts",
		Description: "Get all posts in the feed, newest first",
		Tags:        []string{"posts"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.PostListResponse, error) {
		posts, err := s.feedService.ListPosts(ctx)
		if err != nil {
			return nil, s.mapFeedError(err)
		}

		// Convert domain posts to API response
		apiPosts := make([]models.PostData, len(posts))
		for i, post := range posts {
			apiPosts[i] = s.domainToAPIPost(post)
		}

		return &models.PostListResponse{
			Body: models.PostListData{
				Posts: apiPosts,
				Count: len(apiPosts),
			},
		}, nil
	})

	// Create new post
	huma.Register(s.api, huma.Operation{
		OperationID: "create-post",
		Method:      http.MethodPost,
		Path:        "/api/posts",
		Summary:     "Create Post",
		Description: "Publish a new post to the feed",
		Tags:        []string{"posts"},
		Errors:      []int{400, 401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.PostCreateRequest) (*models.PostResponse, error) {
		post, err := s.feedService.CreatePost(ctx, feed.PostCreateParams{
			Message:  input.Body.Message,
			Username: input.Body.Username,
		})
		if err != nil {
			return nil, s.mapFeedError(err)
		}

		return &models.PostResponse{
			Body: s.domainToAPIPost(*post),
		}, nil
	})

	// Get specific post
	huma.Register(s.api, huma.Operation{
		OperationID: "get-post",
		Method:      http.MethodGet,
		Path:        "/api/posts/{id}",
		Summary:     "Get Post",
		Description: "Get a single post with its comments",
		Tags:        []string{"posts"},
		Errors:      []int{401, 404, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		ID string `path:"id" example:"c2c9454e-31d4-4a45-8c0d-6ad0a07b11f2" doc:"Post identifier"`
	}) (*models.PostResponse, error) {
		post, err := s.feedService.GetPost(ctx, input.ID)
		if err != nil {
			return nil, s.mapFeedError(err)
		}

		return &models.PostResponse{
			Body: s.domainToAPIPost(*post),
		}, nil
	})

	// Delete post
	huma.Register(s.api, huma.Operation{
		OperationID: "delete-post",
		Method:      http.MethodDelete,
		Path:        "/api/posts/{id}",
		Summary:     "Delete Post",
		Description: "Delete a post; only the author may delete it",
		Tags:        []string{"posts"},
		Errors:      []int{401, 404, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id" example:"c2c9454e-31d4-4a45-8c0d-6ad0a07b11f2" doc:"Post identifier"`
		Body models.PostDeleteData
	}) (*struct{}, error) {
		err := s.feedService.DeletePost(ctx, input.ID, input.Body.Username)
		if err != nil {
			return nil, s.mapFeedError(err)
		}

		return &struct{}{}, nil
	})

	// List comments on a post
	huma.Register(s.api, huma.Operation{
		OperationID: "list-comments",
		Method:      http.MethodGet,
		Path:        "/api/posts/{id}/comments",
		Summary:     "List Comments",
		Description: "Get all comments on a post, oldest first",
		Tags:        []string{"comments"},
		Errors:      []int{401, 404, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		ID string `path:"id" example:"c2c9454e-31d4-4a45-8c0d-6ad0a07b11f2" doc:"Post identifier"`
	}) (*models.CommentListResponse, error) {
		comments, err := s.feedService.ListComments(ctx, input.ID)
		if err != nil {
			return nil, s.mapFeedError(err)
		}

		apiComments := make([]models.CommentData, len(comments))
		for i, comment := range comments {
			apiComments[i] = s.domainToAPIComment(comment)
		}

		return &models.CommentListResponse{
			Body: models.CommentListData{
				Comments: apiComments,
				Count:    len(apiComments),
			},
		}, nil
	})

	// Create comment on a post
	huma.Register(s.api, huma.Operation{
		OperationID: "create-comment",
		Method:      http.MethodPost,
		Path:        "/api/posts/{id}/comments",
		Summary:     "Create Comment",
		Description: "Add a comment to a post",
		Tags:        []string{"comments"},
		Errors:      []int{400, 401, 404, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id" example:"c2c9454e-31d4-4a45-8c0d-6ad0a07b11f2" doc:"Post identifier"`
		Body models.CommentCreateData
	}) (*models.CommentResponse, error) {
		comment, err := s.feedService.CreateComment(ctx, input.ID, feed.CommentCreateParams{
			Message:  input.Body.Message,
			Username: input.Body.Username,
		})
		if err != nil {
			return nil, s.mapFeedError(err)
		}

		return &models.CommentResponse{
			Body: s.domainToAPIComment(*comment),
		}, nil
	})

	// Delete comment
	huma.Register(s.api, huma.Operation{
		OperationID: "delete-comment",
		Method:      http.MethodDelete,
		Path:        "/api/posts/{id}/comments/{comment_id}",
		Summary:     "Delete Comment",
		Description: "Delete a comment; only the author may delete it",
		Tags:        []string{"comments"},
		Errors:      []int{401, 404, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		ID        string `path:"id" example:"c2c9454e-31d4-4a45-8c0d-6ad0a07b11f2" doc:"Post identifier"`
		CommentID string `path:"comment_id" example:"7f8cbb32-9d11-4a0f-9c2b-0f6a76a3cafe" doc:"Comment identifier"`
		Body      models.PostDeleteData
	}) (*struct{}, error) {
		err := s.feedService.DeleteComment(ctx, input.ID, input.CommentID, input.Body.Username)
		if err != nil {
			return nil, s.mapFeedError(err)
		}

		return &struct{}{}, nil
	})
}

// domainToAPIPost converts a domain post to API post data
func (s *Server) domainToAPIPost(post feed.Post) models.PostData {
	comments := make([]models.CommentData, len(post.Comments))
	for i, comment := range post.Comments {
		comments[i] = s.domainToAPIComment(comment)
	}

	return models.PostData{
		ID:        post.ID,
		Message:   post.Message,
		Username:  post.Username,
		Timestamp: post.Timestamp,
		Comments:  comments,
	}
}

// domainToAPIComment converts a domain comment to API comment data
func (s *Server) domainToAPIComment(comment feed.Comment) models.CommentData {
	return models.CommentData{
		ID:        comment.ID,
		Message:   comment.Message,
		Username:  comment.Username,
		Timestamp: comment.Timestamp,
	}
}

// mapFeedError maps domain errors to HTTP errors
func (s *Server) mapFeedError(err error) error {
	if feedErr, ok := err.(*feed.FeedError); ok {
		switch feedErr.Code {
		case feed.ErrCodePostNotFound:
			return huma.Error404NotFound(feedErr.Message, err)
		case feed.ErrCodeCommentNotFound:
			return huma.Error404NotFound(feedErr.Message, err)
		case feed.ErrCodeUnauthorized:
			return huma.Error401Unauthorized(feedErr.Message, err)
		case feed.ErrCodeInvalidParams:
			return huma.Error400BadRequest(feedErr.Message, err)
		case feed.ErrCodeStorageError:
			return huma.Error500InternalServerError(feedErr.Message, err)
		default:
			return huma.Error500InternalServerError("internal server error", err)
		}
	}
	return huma.Error500InternalServerError("internal server error", err)
}
