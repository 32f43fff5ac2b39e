// Package ratelimit implements the per-token sliding window that guards the
// embed query endpoint. Two backends exist: an in-process window for single
// replica deployments and a Redis window shared across replicas.
//
// Enforcement is server-side only. Clients receive window state in response
// metadata for display but never pre-block sends.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of a rate limit check.
type Result struct {
	// Allowed is false when the request must be rejected with 429.
	Allowed bool
	// Limit is the configured window capacity.
	Limit int
	// Remaining is the number of requests left in the current window.
	Remaining int
	// RetryAfter is how long until the oldest request leaves the window.
	// Zero when Allowed.
	RetryAfter time.Duration
}

// Limiter is a sliding window rate limiter keyed by an opaque string.
type Limiter interface {
	// Allow records a request for key and reports whether it fits the window.
	Allow(ctx context.Context, key string) (Result, error)
	// Peek reports window state for key without recording a request.
	Peek(ctx context.Context, key string) (Result, error)
}
