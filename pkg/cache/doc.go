// Package cache provides a generic, thread-safe LRU cache with optional
// per-cache TTL, used to keep bounded copies of remote data service responses
// in memory.
//
// When the cache reaches capacity the least recently used entry is evicted.
// With a TTL configured, expired entries are treated as misses and removed
// lazily on access.
//
// Basic usage:
//
//	c := cache.New[string, []byte](256, cache.WithTTL[string, []byte](time.Minute))
//	c.Set("GET /users/42", body)
//	if body, ok := c.Get("GET /users/42"); ok {
//		// fresh hit
//	}
package cache
