// Package cache provides a small in-process TTL cache. The apiserver uses
// it to keep hot embed token resolutions off the database; every widget
// call starts with the same token lookup.
package cache

import (
	"sync"
	"time"
)

// TTLCache is a generic cache whose entries expire after a fixed duration.
// Expired entries are dropped lazily on read and during Set sweeps.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[K]entry[V]

	// now is injectable for tests
	now func() time.Time
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// NewTTL creates a TTLCache with the given entry lifetime.
func NewTTL[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:   ttl,
		items: make(map[K]entry[V]),
		now:   time.Now,
	}
}

// Set adds or refreshes an entry.
func (c *TTLCache[K, V]) Set(key K, value V) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	// opportunistic sweep; the map stays small for typical token counts
	for k, e := range c.items {
		if now.After(e.expires) {
			delete(c.items, k)
		}
	}
	c.items[key] = entry[V]{value: value, expires: now.Add(c.ttl)}
}

// Get retrieves a live entry.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expires) {
		if ok {
			c.Del(key)
		}
		var zero V
		return zero, false
	}
	return e.value, true
}

// Del removes an entry.
func (c *TTLCache[K, V]) Del(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of stored entries, expired ones included until
// the next sweep.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]entry[V])
}
