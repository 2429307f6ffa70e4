package client

import (
	"time"

	"github.com/pulsekit/pulsekit/pkg/cache"
)

// ResponseCache is an LRU-backed Cache for GET responses, keyed by method and
// path. Safe for concurrent use.
type ResponseCache struct {
	lru *cache.LRU[string, *Response]
}

// NewResponseCache creates a response cache holding at most capacity entries.
// A positive ttl bounds how long a cached response stays fresh; zero means
// entries only leave by LRU eviction.
func NewResponseCache(capacity int, ttl time.Duration) *ResponseCache {
	var opts []cache.Option[string, *Response]
	if ttl > 0 {
		opts = append(opts, cache.WithTTL[string, *Response](ttl))
	}
	return &ResponseCache{lru: cache.New[string, *Response](capacity, opts...)}
}

func (rc *ResponseCache) Get(method, path string) (*Response, bool) {
	return rc.lru.Get(method + " " + path)
}

func (rc *ResponseCache) Set(method, path string, resp *Response) {
	rc.lru.Set(method+" "+path, resp)
}

// Invalidate drops the cached response for one method and path.
func (rc *ResponseCache) Invalidate(method, path string) bool {
	return rc.lru.Remove(method + " " + path)
}

// Clear drops all cached responses.
func (rc *ResponseCache) Clear() {
	rc.lru.Purge()
}
