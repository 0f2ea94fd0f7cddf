package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates a referenced record does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrPrecondition indicates a failed role, membership or state check.
	ErrPrecondition = errors.New("precondition failed")
)

// NotFound wraps ErrNotFound with a human-readable message.
func NotFound(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrNotFound)
}

// Precondition wraps ErrPrecondition with a human-readable message.
func Precondition(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrPrecondition)
}

// Preconditionf is Precondition with formatting.
func Preconditionf(format string, args ...interface{}) error {
	return Precondition(fmt.Sprintf(format, args...))
}

// Status maps an error to the HTTP status code the API responds with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPrecondition):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
