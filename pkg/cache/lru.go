package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// LRU is a thread-safe fixed-capacity cache. The least recently used entry is
// evicted when capacity is exceeded. A zero TTL means entries never expire.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	index    map[K]*list.Element
	order    *list.List // front = most recently used
}

// Option configures an LRU cache.
type Option[K comparable, V any] func(*LRU[K, V])

// WithTTL makes entries expire after d. Expired entries are dropped lazily
// when read.
func WithTTL[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *LRU[K, V]) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// New creates an LRU cache holding at most capacity entries. Panics if
// capacity is not positive.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}

	c := &LRU[K, V]{
		capacity: capacity,
		index:    make(map[K]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value and marks it as recently used. An expired
// entry counts as a miss and is removed.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}

	e := elem.Value.(*entry[K, V])
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		c.remove(elem)
		var zero V
		return zero, false
	}

	c.order.MoveToFront(elem)
	return e.value, true
}

// Set stores a value, refreshing its age and recency. At capacity the least
// recently used entry is evicted.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		e := elem.Value.(*entry[K, V])
		e.value = value
		e.storedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	c.index[key] = c.order.PushFront(&entry[K, V]{
		key:      key,
		value:    value,
		storedAt: time.Now(),
	})

	if c.order.Len() > c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Remove drops the entry for key, reporting whether it existed.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if ok {
		c.remove(elem)
	}
	return ok
}

// Len returns the number of entries currently stored, including any that
// have expired but were not read since.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge removes all entries.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = make(map[K]*list.Element)
	c.order.Init()
}

// remove must be called with the lock held.
func (c *LRU[K, V]) remove(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.index, elem.Value.(*entry[K, V]).key)
}
