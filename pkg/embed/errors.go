package embed

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by Session operations.
var (
	// ErrNotReady is returned by Send when the session is not in Ready state.
	ErrNotReady = errors.New("embed: session is not ready")

	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("embed: session is closed")

	// ErrAlreadyOpen is returned by Open on a session past Init.
	ErrAlreadyOpen = errors.New("embed: session already opened")

	// ErrEmptyQuery is returned by Send for empty or whitespace input.
	ErrEmptyQuery = errors.New("embed: query is empty")
)

// APIError is a non-2xx response from the embed API. Message carries the
// server's error string verbatim; callers render it as received.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("embed: request failed with status %d", e.StatusCode)
}

// IsInvalidToken reports whether the error is the unknown-token rejection.
// This is fatal for a session; the token will not become valid by retrying.
func IsInvalidToken(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether the error is a 429 window rejection.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
