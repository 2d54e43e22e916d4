// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Feed endpoints have no error codes of their own because
// they degrade to fallback data instead of failing.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeToolNotFound  = "tool_not_found"
	ErrCodeNoArchive     = "archive_empty"
	ErrCodeArchiveFailed = "archive_failed"
)
