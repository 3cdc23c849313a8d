// Package cache implements the Embedding Cache: a thin, bounded-LRU wrapper
// over an embedding provider, keyed by exact text content. Adapted from the
// registry package's mutex-guarded PluginCache, generalized here with a
// doubly linked access-order list so eviction is true LRU rather than
// unordered-map replacement.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// EmbeddingProvider is the narrow collaborator the cache wraps.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type entry struct {
	key   string
	value []float32
}

// Cache is a bounded LRU cache over EmbeddingProvider.Embed, safe for
// concurrent use. When Enabled is false it passes every call straight
// through without touching the map.
type Cache struct {
	mu      sync.Mutex
	inner   EmbeddingProvider
	maxSize int
	enabled bool

	entries map[string]*list.Element
	order   *list.List // front = most recently used

	hits   int64
	misses int64
}

// Option configures a Cache at construction.
type Option func(*Cache)

// WithMaxEntries sets the bounded LRU capacity. Non-positive values disable
// bounding (unlimited growth), which is almost never what you want.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxSize = n }
}

// WithEnabled sets whether caching is active; false makes every call a
// pass-through miss.
func WithEnabled(enabled bool) Option {
	return func(c *Cache) { c.enabled = enabled }
}

// New constructs a Cache wrapping inner, defaulting to 1000 entries and
// enabled.
func New(inner EmbeddingProvider, opts ...Option) *Cache {
	c := &Cache{
		inner:   inner,
		maxSize: 1000,
		enabled: true,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed returns the cached vector for text if present, otherwise calls
// through to the wrapped provider. Upstream failures are returned as-is and
// never cached, so a transient outage doesn't poison the cache.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.enabled {
		return c.inner.Embed(ctx, text)
	}

	c.mu.Lock()
	if el, ok := c.entries[text]; ok {
		c.order.MoveToFront(el)
		vec := el.Value.(*entry).value
		c.mu.Unlock()
		atomic.AddInt64(&c.hits, 1)
		return vec, nil
	}
	c.mu.Unlock()

	atomic.AddInt64(&c.misses, 1)

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return vec, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have inserted the same key while we were
	// calling through; idempotent under concurrent misses for the same key.
	if el, ok := c.entries[text]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry).value, nil
	}

	el := c.order.PushFront(&entry{key: text, value: vec})
	c.entries[text] = el
	if c.maxSize > 0 && c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}
	return vec, nil
}

// Stats is a snapshot of hit/miss counters.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// Statistics returns a point-in-time snapshot of the cache's counters.
func (c *Cache) Statistics() Stats {
	c.mu.Lock()
	size := c.order.Len()
	c.mu.Unlock()
	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Size:   size,
	}
}

// Reset clears all entries and counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order = list.New()
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}
