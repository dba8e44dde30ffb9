// Package cache provides a small in-memory TTL cache with
// least-recently-used eviction, used to avoid regenerating OpenAPI
// documents on every request within a warm instance.
//
// Lookups report presence explicitly:
//
//	c := cache.New(5 * time.Minute)
//	c.Set("count", 0, 0)
//
//	if v, ok := c.Get("count"); ok {
//	    // v is 0 and ok is true: stored zero values are
//	    // distinguishable from absent keys.
//	}
//
// Expired entries are treated as absent on read and evicted lazily;
// CleanupExpired sweeps them eagerly.
package cache
