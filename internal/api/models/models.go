package models

import (
	"time"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.2.3" doc:"Running server version"`
	GitCommit string `json:"git_commit" example:"a1b2c3d" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-06-01T12:00:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go version used to build"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Build platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Comment models
type CommentData struct {
	ID        string    `json:"id" example:"7f8cbb32-9d11-4a0f-9c2b-0f6a76a3cafe" doc:"Unique comment identifier"`
	Message   string    `json:"message" example:"Nice post!" doc:"Comment text"`
	Username  string    `json:"username" example:"grace" doc:"Author of the comment"`
	Timestamp time.Time `json:"timestamp" doc:"When the comment was created"`
}

type CommentCreateData struct {
	Message  string `json:"message,omitempty" example:"Nice post!" doc:"Comment text"`
	Username string `json:"username,omitempty" example:"grace" doc:"Author of the comment"`
}

type CommentCreateRequest struct {
	Body CommentCreateData
}

type CommentListData struct {
	Comments []CommentData `json:"comments" doc:"Comments on the post, oldest first"`
	Count    int           `json:"count" example:"2" doc:"Number of comments"`
}

type CommentListResponse struct {
	Body CommentListData
}

type CommentResponse struct {
	Body CommentData
}

// Post models
type PostData struct {
	ID        string        `json:"id" example:"c2c9454e-31d4-4a45-8c0d-6ad0a07b11f2" doc:"Unique post identifier"`
	Message   string        `json:"message" example:"Hello, world!" doc:"Post text"`
	Username  string        `json:"username" example:"ada" doc:"Author of the post"`
	Timestamp time.Time     `json:"timestamp" doc:"When the post was created"`
	Comments  []CommentData `json:"comments" doc:"Comments on the post, oldest first"`
}

type PostCreateData struct {
	Message  string `json:"message,omitempty" example:"Hello, world!" doc:"Post text"`
	Username string `json:"username,omitempty" example:"ada" doc:"Author of the post"`
}

type PostCreateRequest struct {
	Body PostCreateData
}

type PostDeleteData struct {
	Username string `json:"username,omitempty" example:"ada" doc:"Requesting user, must match the post author"`
}

type PostDeleteRequest struct {
	Body PostDeleteData
}

type PostListData struct {
	Posts []PostData `json:"posts" doc:"Posts in the feed, newest first"`
	Count int        `json:"count" example:"2" doc:"Number of posts"`
}

type PostListResponse struct {
	Body PostListData
}

type PostResponse struct {
	Body PostData
}
