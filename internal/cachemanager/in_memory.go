package cachemanager

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/vlist/internal/log"
)

// InMemory is a CacheManager backed by go-cache.
type InMemory[K ~string, V any] struct {
	name   string
	ttl    time.Duration
	cache  *gocache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewInMemory creates a cache whose entries live for ttl. With NoExpiration
// the janitor goroutine is not started.
func NewInMemory[K ~string, V any](name string, ttl time.Duration) *InMemory[K, V] {
	cleanup := time.Duration(0)
	if ttl > 0 {
		cleanup = 2 * ttl
	}
	return &InMemory[K, V]{
		name:  name,
		ttl:   ttl,
		cache: gocache.New(ttl, cleanup),
	}
}

// Get returns the value stored under key.
func (c *InMemory[K, V]) Get(key K) (V, bool) {
	var zero V

	value, found := c.cache.Get(string(key))
	if !found {
		c.misses.Add(1)
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.name, "key", key)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return v, true
}

// Set stores value under key with the cache's ttl.
func (c *InMemory[K, V]) Set(key K, value V) {
	c.cache.Set(string(key), value, gocache.DefaultExpiration)
}

// Delete removes keys. Missing keys are ignored.
func (c *InMemory[K, V]) Delete(keys ...K) {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
}

// Flush removes every entry and resets the counters.
func (c *InMemory[K, V]) Flush() {
	c.cache.Flush()
	c.hits.Store(0)
	c.misses.Store(0)
	log.Debug(log.CatCache, "cache flushed", "cache", c.name)
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *InMemory[K, V]) Len() int {
	return c.cache.ItemCount()
}

// Stats returns the lookup counters.
func (c *InMemory[K, V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

var _ CacheManager[string, int] = (*InMemory[string, int])(nil)
