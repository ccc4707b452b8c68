package feed

import "fmt"

// FeedError represents a domain-specific error
type FeedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *FeedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FeedError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodePostNotFound    = "POST_NOT_FOUND"
	ErrCodeCommentNotFound = "COMMENT_NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInvalidParams   = "INVALID_PARAMS"
	ErrCodeStorageError    = "STORAGE_ERROR"
)

// NewFeedError creates a new feed error
func NewFeedError(code, message string, cause error) *FeedError {
	return &FeedError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
