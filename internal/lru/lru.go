// Package lru provides a bounded least-recently-used cache that is safe for
// concurrent use. It wraps groupcache's lru.Cache with a single mutex.
package lru

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultCapacity is the capacity of the string conversion caches.
const DefaultCapacity = 1 << 12

// Stats reports cache effectiveness.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// Cache is a mutex-guarded, fixed-capacity LRU map from K to V. Eviction is
// strict least-recently-used by access order.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	lru      *lru.Cache
	capacity int
	hits     uint64
	misses   uint64
}

// New creates a cache holding at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		lru:      lru.New(capacity),
		capacity: capacity,
	}
}

// Get looks up key and marks it as most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return v.(V), true
}

// Add inserts key. An existing entry keeps its value and is only touched.
func (c *Cache[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lru.Get(key); ok {
		return
	}
	c.lru.Add(key, value)
}

// GetOrCreate returns the cached value for key, calling create on a miss and
// remembering its result. create runs outside the lock, so two concurrent
// misses may both compute; the first insert wins.
func (c *Cache[K, V]) GetOrCreate(key K, create func(K) V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.lru.Get(key); ok {
		return existing.(V)
	}
	c.lru.Add(key, v)
	return v
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops all entries and resets the statistics.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
	c.hits, c.misses = 0, 0
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Len: c.lru.Len()}
}
