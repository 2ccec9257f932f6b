// file: internal/cache/cache.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-1e2f3a4b5c6d

package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when New is given no limit.
const DefaultMaxEntries = 1024

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache is a generic TTL cache safe for concurrent use. A non-positive TTL
// disables it: Set is ignored and Get always misses. When full, expired
// entries are dropped first and then the whole map is cleared.
type Cache[T any] struct {
	mu         sync.RWMutex
	items      map[string]entry[T]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a cache holding up to maxEntries values for ttl each.
func New[T any](ttl time.Duration, maxEntries int) *Cache[T] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache[T]{
		items:      make(map[string]entry[T]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Enabled reports whether values are retained at all.
func (c *Cache[T]) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Get retrieves a value if it exists and hasn't expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	if !c.Enabled() {
		return zero, false
	}
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Set stores a value for the cache TTL.
func (c *Cache[T]) Set(key string, value T) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxEntries {
		c.pruneLocked(now)
		if len(c.items) >= c.maxEntries {
			c.items = make(map[string]entry[T])
		}
	}
	c.items[key] = entry[T]{value: value, expiresAt: now.Add(c.ttl)}
}

// GetOrCompute returns the cached value for key or computes and stores it.
// The bool reports a cache hit.
func (c *Cache[T]) GetOrCompute(key string, compute func() T) (T, bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}
	v := compute()
	c.Set(key, v)
	return v, false
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[T]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// InvalidateAll removes all entries.
func (c *Cache[T]) InvalidateAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]entry[T])
	c.mu.Unlock()
}

func (c *Cache[T]) pruneLocked(now time.Time) {
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
		}
	}
}
