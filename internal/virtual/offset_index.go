package virtual

import "math/bits"

// OffsetIndex is a Fenwick tree over item heights. It answers prefix sums and
// offset-to-index lookups in O(log n) and absorbs a changed height in O(log n),
// so a measurement does not force a full recompute of every later offset.
// Heights must be non-negative.
type OffsetIndex struct {
	heights []float64
	tree    []float64 // 1-based
}

// NewOffsetIndex builds an index over count items sized by r in O(n).
func NewOffsetIndex(count int, r Resolver) *OffsetIndex {
	count = max(0, count)
	x := &OffsetIndex{
		heights: make([]float64, count),
		tree:    make([]float64, count+1),
	}
	for i := range count {
		h := r.Height(i)
		x.heights[i] = h
		x.tree[i+1] += h
		if parent := (i + 1) + ((i + 1) & -(i + 1)); parent <= count {
			x.tree[parent] += x.tree[i+1]
		}
	}
	return x
}

// Len returns the number of items.
func (x *OffsetIndex) Len() int {
	return len(x.heights)
}

// Height returns the stored height of item i.
func (x *OffsetIndex) Height(i int) float64 {
	return x.heights[i]
}

// Set replaces the height of item i.
func (x *OffsetIndex) Set(i int, h float64) {
	delta := h - x.heights[i]
	if delta == 0 {
		return
	}
	x.heights[i] = h
	for j := i + 1; j < len(x.tree); j += j & -j {
		x.tree[j] += delta
	}
}

// Prefix returns the summed height of items [0, k), i.e. the offset of item k.
func (x *OffsetIndex) Prefix(k int) float64 {
	k = min(k, len(x.heights))
	var sum float64
	for ; k > 0; k -= k & -k {
		sum += x.tree[k]
	}
	return sum
}

// Total returns the summed height of every item.
func (x *OffsetIndex) Total() float64 {
	return x.Prefix(len(x.heights))
}

// lastAtMost returns the largest k in [0, n] with Prefix(k) <= v.
func (x *OffsetIndex) lastAtMost(v float64) int {
	return x.search(func(sum float64) bool { return sum <= v })
}

// lastBelow returns the largest k in [0, n] with Prefix(k) < v. The caller
// must ensure Prefix(0) < v holds, i.e. v > 0.
func (x *OffsetIndex) lastBelow(v float64) int {
	return x.search(func(sum float64) bool { return sum < v })
}

// search walks the tree from the highest power of two down, extending the
// prefix while ok still holds. ok must be monotone over prefix sums.
func (x *OffsetIndex) search(ok func(sum float64) bool) int {
	n := len(x.heights)
	if n == 0 {
		return 0
	}
	pos := 0
	var sum float64
	for step := 1 << (bits.Len(uint(n)) - 1); step > 0; step >>= 1 {
		next := pos + step
		if next <= n && ok(sum+x.tree[next]) {
			pos = next
			sum += x.tree[next]
		}
	}
	return pos
}
