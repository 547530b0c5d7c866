package virtual

import (
	"math"
	"strconv"

	"github.com/zjrosen/vlist/internal/cachemanager"
	"github.com/zjrosen/vlist/internal/log"
)

// Resolver answers "how tall is item i".
type Resolver interface {
	Height(index int) float64
}

// KeyFunc maps an index to the stable key its measured size is cached under.
type KeyFunc func(index int) string

// IndexKey is the default KeyFunc. It is only correct while items never move.
func IndexKey(index int) string {
	return strconv.Itoa(index)
}

// Fixed gives every item the same height.
type Fixed float64

// Height returns the fixed height regardless of index.
func (f Fixed) Height(int) float64 { return float64(f) }

// Computed derives the height from the index. The function must be
// deterministic and free of side effects.
type Computed func(index int) float64

// Height calls the wrapped function, clamping unusable results to zero.
func (c Computed) Height(index int) float64 {
	return sanitizeHeight(c(index), index)
}

// Measured resolves heights from a cache of observed sizes, falling back to
// an estimate for items that have never been reported.
type Measured struct {
	key      KeyFunc
	estimate func(index int) float64
	cache    cachemanager.CacheManager[string, float64]
}

// NewMeasured creates a Measured resolver. A nil key func uses IndexKey.
func NewMeasured(estimate func(index int) float64, key KeyFunc) *Measured {
	if key == nil {
		key = IndexKey
	}
	return &Measured{
		key:      key,
		estimate: estimate,
		cache:    cachemanager.NewInMemory[string, float64]("sizes", cachemanager.NoExpiration),
	}
}

// Height returns the last measured height for the item's key, or the estimate.
func (m *Measured) Height(index int) float64 {
	if h, ok := m.cache.Get(m.key(index)); ok {
		return h
	}
	return sanitizeHeight(m.estimate(index), index)
}

// Key returns the stable key for index.
func (m *Measured) Key(index int) string {
	return m.key(index)
}

// IsMeasured reports whether a size has been recorded for index.
func (m *Measured) IsMeasured(index int) bool {
	_, ok := m.cache.Get(m.key(index))
	return ok
}

// Report records a measured height for index. Last report wins.
// Negative or non-finite heights and negative indices are dropped.
// Returns true when the stored height changed.
func (m *Measured) Report(index int, height float64) bool {
	if index < 0 {
		log.Warn(log.CatVirtual, "ignoring measurement for negative index", "index", index)
		return false
	}
	if !validHeight(height) {
		log.Warn(log.CatVirtual, "ignoring invalid measurement", "index", index, "height", height)
		return false
	}

	key := m.key(index)
	if prev, ok := m.cache.Get(key); ok && prev == height {
		return false
	}
	m.cache.Set(key, height)
	return true
}

// Len returns the number of measured keys.
func (m *Measured) Len() int {
	return m.cache.Len()
}

// Stats returns size cache lookup counters.
func (m *Measured) Stats() cachemanager.Stats {
	return m.cache.Stats()
}

// Reset forgets every measurement.
func (m *Measured) Reset() {
	m.cache.Flush()
}

func validHeight(h float64) bool {
	return h >= 0 && !math.IsInf(h, 0) && !math.IsNaN(h)
}

// sanitizeHeight keeps a bad height from a caller-supplied function from
// corrupting every offset after it.
func sanitizeHeight(h float64, index int) float64 {
	if validHeight(h) {
		return h
	}
	log.Warn(log.CatVirtual, "size function returned invalid height", "index", index, "height", h)
	return 0
}

// keyFor returns a key function for rows produced with r.
func keyFor(r Resolver) KeyFunc {
	if m, ok := r.(*Measured); ok {
		return m.key
	}
	return IndexKey
}
