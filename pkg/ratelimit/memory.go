package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps per-key request timestamps in process memory.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewMemoryLimiter creates an in-process sliding window limiter.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	window := l.prune(key, now)

	if len(window) >= l.limit {
		retry := window[0].Add(l.window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Result{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: retry}, nil
	}

	l.hits[key] = append(window, now)
	return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - len(window) - 1}, nil
}

// Peek implements Limiter.
func (l *MemoryLimiter) Peek(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.prune(key, l.now())
	remaining := l.limit - len(window)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: remaining > 0, Limit: l.limit, Remaining: remaining}, nil
}

// prune drops timestamps older than the window and returns what is left.
// Caller must hold the lock.
func (l *MemoryLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	window := l.hits[key]

	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	window = window[i:]

	if len(window) == 0 {
		delete(l.hits, key)
	} else {
		l.hits[key] = window
	}
	return window
}
