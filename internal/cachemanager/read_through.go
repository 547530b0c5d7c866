package cachemanager

// ReadThrough fills a cache from a producer function on miss.
type ReadThrough[K ~string, V any, I any] struct {
	cache    CacheManager[K, V]
	fn       func(input I) (V, error)
	bypassed bool
}

// NewReadThrough wraps cache with fn. When bypass is set every call goes
// straight to fn.
func NewReadThrough[K ~string, V any, I any](cache CacheManager[K, V], fn func(input I) (V, error), bypass bool) *ReadThrough[K, V, I] {
	return &ReadThrough[K, V, I]{cache: cache, fn: fn, bypassed: bypass}
}

// Get returns the cached value for key, producing and storing it from input
// on a miss. Errors are returned without caching.
func (r *ReadThrough[K, V, I]) Get(key K, input I) (V, error) {
	if r.bypassed {
		return r.fn(input)
	}

	if value, ok := r.cache.Get(key); ok {
		return value, nil
	}

	value, err := r.fn(input)
	if err != nil {
		return value, err
	}
	r.cache.Set(key, value)
	return value, nil
}

// Invalidate drops the cached values for keys.
func (r *ReadThrough[K, V, I]) Invalidate(keys ...K) {
	r.cache.Delete(keys...)
}

// Cache returns the backing cache.
func (r *ReadThrough[K, V, I]) Cache() CacheManager[K, V] {
	return r.cache
}
