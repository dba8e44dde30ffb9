package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the entry lifetime used when Set receives a zero TTL.
const DefaultTTL = 5 * time.Minute

// entry is one cached value with its lifetime bookkeeping.
type entry struct {
	value      any
	insertedAt time.Time
	expiresAt  time.Time
	lastAccess time.Time
}

// Stats describes the cache contents at a point in time.
type Stats struct {
	TotalEntries   int
	ActiveEntries  int
	ExpiredEntries int
	DefaultTTL     time.Duration
}

// Cache is an in-memory TTL cache with least-recently-used eviction.
// All operations are guarded by a mutex around the full
// read-modify-write sequence, so concurrent lookups and inserts never
// lose updates.
//
// Get reports presence explicitly through its second return value:
// zero values such as 0, false, and "" stored in the cache are
// distinguishable from absent keys.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	defaultTTL time.Duration
	maxEntries int
	now        func() time.Time // injectable for tests
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries bounds the cache size; inserting past the bound evicts
// the least recently used entry. Zero or negative means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxEntries = n }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache. A zero defaultTTL falls back to DefaultTTL.
func New(defaultTTL time.Duration, opts ...Option) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	c := &Cache{
		entries:    make(map[string]*entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key and whether it was present.
// Expired entries are treated as absent and evicted on read.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	now := c.now()
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	e.lastAccess = now
	return e.value, true
}

// Set stores value under key with the given TTL. A zero or negative
// TTL uses the cache default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictLRU()
		}
	}

	c.entries[key] = &entry{
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
}

// evictLRU removes the least recently used entry. Caller holds the lock.
func (c *Cache) evictLRU() {
	var (
		oldestKey  string
		oldestTime time.Time
		found      bool
	)
	for key, e := range c.entries {
		if !found || e.lastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.lastAccess
			found = true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
}

// CleanupExpired removes expired entries and returns the count removed.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// GetStats returns the current cache statistics.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	active := 0
	for _, e := range c.entries {
		if !now.After(e.expiresAt) {
			active++
		}
	}

	return Stats{
		TotalEntries:   len(c.entries),
		ActiveEntries:  active,
		ExpiredEntries: len(c.entries) - active,
		DefaultTTL:     c.defaultTTL,
	}
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
