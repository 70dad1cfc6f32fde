// Package cache implements a bounded in-memory store with per-entry TTL
// and least-recently-used eviction. It is safe for concurrent use.
package cache

import (
	"container/list"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Entry wraps a stored value with its creation time and TTL.
type Entry[V any] struct {
	Value     V
	CreatedAt time.Time
	TTL       time.Duration
}

// Expired reports whether the entry has outlived its TTL.
func (e *Entry[V]) Expired() bool {
	return time.Since(e.CreatedAt) > e.TTL
}

// Age returns how long ago the entry was stored.
func (e *Entry[V]) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// Stats describes the cache occupancy.
type Stats struct {
	Size         int     `json:"size"`
	MaxSize      int     `json:"max_size"`
	TTLSeconds   float64 `json:"ttl_seconds"`
	UsagePercent float64 `json:"usage_percent"`
}

type item[V any] struct {
	key   string
	entry Entry[V]
}

// Cache is a thread-safe LRU cache with a fixed capacity and a single TTL
// applied to every entry. Recency is tracked with a doubly linked list so
// move-to-front and eviction are both O(1); the front of the list is the
// least recently used entry.
type Cache[V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
}

// New creates a cache holding at most maxSize entries, each expiring ttl
// after insertion.
func New[V any](maxSize int, ttl time.Duration) *Cache[V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache[V]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the value stored under key. An expired entry is removed as a
// side effect and reported as a miss. A hit marks the key most recently
// used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	it := elem.Value.(*item[V])
	if it.entry.Expired() {
		c.remove(elem)
		slog.Debug("cache entry expired", "key", key, "age", it.entry.Age())
		return zero, false
	}

	c.order.MoveToBack(elem)
	return it.entry.Value, true
}

// Set inserts or replaces the value for key. Replacing removes the old
// entry first so the key always lands at the most-recently-used position.
// When occupancy exceeds capacity, least-recently-used entries are evicted
// until the cache fits.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}

	elem := c.order.PushBack(&item[V]{
		key: key,
		entry: Entry[V]{
			Value:     value,
			CreatedAt: time.Now(),
			TTL:       c.ttl,
		},
	})
	c.items[key] = elem

	for len(c.items) > c.maxSize {
		front := c.order.Front()
		evicted := front.Value.(*item[V])
		c.remove(front)
		slog.Debug("cache full, evicted least recently used entry",
			"key", evicted.key, "age", evicted.entry.Age())
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// CleanupExpired removes every expired entry without waiting for a Get to
// discover it, and returns the number removed. Expiry is otherwise lazy,
// so entries linger until touched or until this sweep runs.
func (c *Cache[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if elem.Value.(*item[V]).entry.Expired() {
			c.remove(elem)
			removed++
		}
		elem = next
	}

	if removed > 0 {
		slog.Debug("cleaned up expired cache entries", "count", removed)
	}
	return removed
}

// Len returns the current number of entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the cache occupancy statistics.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	usage := float64(len(c.items)) / float64(c.maxSize) * 100
	return Stats{
		Size:         len(c.items),
		MaxSize:      c.maxSize,
		TTLSeconds:   c.ttl.Seconds(),
		UsagePercent: round1(usage),
	}
}

// remove must be called with the lock held.
func (c *Cache[V]) remove(elem *list.Element) {
	it := elem.Value.(*item[V])
	delete(c.items, it.key)
	c.order.Remove(elem)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
