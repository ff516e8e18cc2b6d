package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a manual clock.
type Clock func() time.Time

// Observer is told about every lookup, e.g. to feed hit/miss metrics.
type Observer interface {
	Hit(name string)
	Miss(name string)
}

type entry[V any] struct {
	value   V
	created time.Time
}

// Cache memoises values per key for a fixed TTL. Expired entries are
// dropped lazily when Get or Has finds them; nothing sweeps in the
// background.
type Cache[V any] struct {
	name     string
	ttl      time.Duration
	now      Clock
	observer Observer

	mu      sync.Mutex
	entries map[string]entry[V]
}

type Option[V any] func(*Cache[V])

func WithClock[V any](now Clock) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

func WithObserver[V any](o Observer) Option[V] {
	return func(c *Cache[V]) { c.observer = o }
}

// New creates a cache whose entries live for ttl.
func New[V any](name string, ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		name:    name,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache[V]) Name() string {
	return c.name
}

func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key if it is younger than the TTL.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	v, ok := c.lookup(key)
	c.mu.Unlock()

	if c.observer != nil {
		if ok {
			c.observer.Hit(c.name)
		} else {
			c.observer.Miss(c.name)
		}
	}
	return v, ok
}

// Peek is Get without notifying the observer.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

// Set stores v under key, replacing any previous entry and its age.
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: v, created: c.now()}
}

// Has reports whether key holds a live entry.
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lookup(key)
	return ok
}

// Age reports how long ago key was set, whether or not it has expired.
// It never evicts.
func (c *Cache[V]) Age(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return c.now().Sub(e.created), true
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len counts stored entries, expired ones included until they are touched.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// lookup must be called with mu held.
func (c *Cache[V]) lookup(key string) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.created) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}
