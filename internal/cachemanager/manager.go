// Package cachemanager provides typed in-memory caches. The virtualizer keeps
// measured heights in one and the list UI keeps rendered rows in another.
package cachemanager

import "time"

// NoExpiration keeps an entry until it is deleted or the cache is flushed.
const NoExpiration time.Duration = -1

// CacheManager is a typed key/value cache.
type CacheManager[K ~string, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(keys ...K)
	Flush()
	Len() int
	Stats() Stats
}

// Stats counts lookups since creation or the last Flush.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// HitRate returns hits as a fraction of all lookups, or zero with no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
