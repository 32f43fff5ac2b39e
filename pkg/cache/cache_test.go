package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache(t *testing.T) {
	now := time.Now()
	c := NewTTL[string, int](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	// expiry
	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestTTLCacheSetRefreshes(t *testing.T) {
	now := time.Now()
	c := NewTTL[string, string](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v1")
	now = now.Add(45 * time.Second)
	c.Set("k", "v2")

	// the refresh restarted the clock
	now = now.Add(30 * time.Second)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestTTLCacheSweepOnSet(t *testing.T) {
	now := time.Now()
	c := NewTTL[string, int](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("old", 1)
	now = now.Add(2 * time.Minute)
	c.Set("new", 2)

	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheDelClear(t *testing.T) {
	c := NewTTL[string, int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Del("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Zero(t, c.Len())
}
