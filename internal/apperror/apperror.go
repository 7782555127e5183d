// Package apperror defines the application's error taxonomy.
//
// Each failure mode gets a sentinel error that callers can test with
// errors.Is, plus a constructor that wraps it in an *AppError carrying the
// human-readable message. The HTTP layer maps sentinels to status codes in
// one place (handler.writeError); the service layer never sees a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNoAccessToken    = errors.New("no access token")
	ErrSyncFailed       = errors.New("sync failed")
)

type AppError struct {
	Err     error  // sentinel (possibly joined with a cause)
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// NotAuthorized indicates the request has no valid session.
// HTTP handlers map this to 401 Unauthorized.
func NotAuthorized(message string) *AppError {
	return &AppError{
		Err:     ErrNotAuthorized,
		Message: message,
	}
}

// InvalidOperation indicates a request that is well-formed but semantically
// impossible, e.g. following yourself.
func InvalidOperation(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidOperation,
		Message: message,
	}
}

// NoAccessToken indicates the session exists but carries no stored GitHub
// access token, so a sync cannot even be attempted.
func NoAccessToken() *AppError {
	return &AppError{
		Err:     ErrNoAccessToken,
		Message: "no GitHub access token available; try logging out and back in",
	}
}

// SyncFailed wraps the error that aborted a GitHub sync attempt.
//
// Both errors.Is(err, ErrSyncFailed) and errors.As against the underlying
// cause (e.g. *github.APIError) work on the result, because the sentinel
// and the cause are wrapped together.
func SyncFailed(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrSyncFailed, cause),
		Message: message,
	}
}
