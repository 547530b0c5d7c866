package virtual

import "math"

// DefaultOverscan is the number of extra rows rendered beyond each visible edge.
const DefaultOverscan = 3

// Viewport is the host's scroll position and visible extent, in the same unit
// as item heights.
type Viewport struct {
	ScrollOffset float64
	Size         float64
}

// normalized clamps negative or non-finite values to zero.
func (vp Viewport) normalized() Viewport {
	if !validHeight(vp.ScrollOffset) {
		vp.ScrollOffset = 0
	}
	if !validHeight(vp.Size) {
		vp.Size = 0
	}
	return vp
}

// Row describes one materialized item.
type Row struct {
	Index     int
	Key       string
	Height    float64
	OffsetTop float64
}

// Window is the renderable slice of the list.
type Window struct {
	// Start and End are the inclusive, overscan-expanded index range.
	Start int
	End   int

	// VisibleStart and VisibleEnd bound the items that intersect the viewport,
	// before overscan.
	VisibleStart int
	VisibleEnd   int

	// Rows holds one descriptor per index in [Start, End].
	Rows []Row

	// TotalHeight is the sum of every item height.
	TotalHeight float64

	// IsScrolling is true while scroll notifications are still arriving.
	IsScrolling bool
}

// Empty reports whether the window has nothing to render.
func (w Window) Empty() bool {
	return len(w.Rows) == 0
}

// Row returns the descriptor for index if it is inside the window.
func (w Window) Row(index int) (Row, bool) {
	if w.Empty() || index < w.Start || index > w.End {
		return Row{}, false
	}
	return w.Rows[index-w.Start], true
}

// Compute returns the window for count items sized by r. Fixed resolvers take
// the O(1) path; everything else walks every index once.
func Compute(count int, r Resolver, vp Viewport, overscan int) Window {
	if count <= 0 || r == nil {
		return Window{}
	}
	vp = vp.normalized()
	if f, ok := r.(Fixed); ok && validHeight(float64(f)) && f > 0 {
		return computeFixed(count, float64(f), vp, overscan, IndexKey)
	}
	return computeLinear(count, r, vp, overscan)
}

// computeLinear is the single forward pass: it accumulates offsets for every
// index, marking the first row whose bottom passes the scroll offset and the
// first row whose top reaches the viewport bottom.
func computeLinear(count int, r Resolver, vp Viewport, overscan int) Window {
	heights := make([]float64, count)
	offsets := make([]float64, count)

	// Uniform offsets are products, not running sums, so they match
	// computeFixed exactly for fractional heights.
	fixed, uniform := r.(Fixed)

	bottom := vp.ScrollOffset + vp.Size
	start, end := -1, -1
	var offset float64
	for i := range count {
		if uniform {
			offset = float64(i) * float64(fixed)
		}
		h := r.Height(i)
		heights[i], offsets[i] = h, offset
		if start < 0 && offset+h > vp.ScrollOffset {
			start = i
		}
		if end < 0 && offset >= bottom {
			end = i
		}
		offset += h
	}
	if uniform {
		offset = float64(count) * float64(fixed)
	}

	w := bounds(count, start, end, overscan)
	w.TotalHeight = offset
	key := keyFor(r)
	w.Rows = make([]Row, 0, w.End-w.Start+1)
	for i := w.Start; i <= w.End; i++ {
		w.Rows = append(w.Rows, Row{Index: i, Key: key(i), Height: heights[i], OffsetTop: offsets[i]})
	}
	return w
}

// computeFixed answers the uniform-height case arithmetically. It agrees with
// computeLinear for the same inputs.
func computeFixed(count int, height float64, vp Viewport, overscan int, key KeyFunc) Window {
	top := func(i int) float64 { return float64(i) * height }
	bottom := vp.ScrollOffset + vp.Size
	start := firstFrom(count, math.Floor(vp.ScrollOffset/height), func(i int) bool { return top(i)+height > vp.ScrollOffset })
	end := firstFrom(count, math.Ceil(bottom/height), func(i int) bool { return top(i) >= bottom })

	w := bounds(count, start, end, overscan)
	w.TotalHeight = float64(count) * height
	w.Rows = make([]Row, 0, w.End-w.Start+1)
	for i := w.Start; i <= w.End; i++ {
		w.Rows = append(w.Rows, Row{Index: i, Key: key(i), Height: height, OffsetTop: float64(i) * height})
	}
	return w
}

// firstFrom returns the first index in [0, count) satisfying the monotone
// pred, or -1. guess is the arithmetic estimate; it is corrected by stepping
// so rounding in the division cannot move the edge.
func firstFrom(count int, guess float64, pred func(int) bool) int {
	i := count
	if guess < float64(count) {
		i = max(0, int(guess))
	}
	for i > 0 && pred(i-1) {
		i--
	}
	for i < count && !pred(i) {
		i++
	}
	if i == count {
		return -1
	}
	return i
}

// computeIndexed answers the variable-height case from a prefix-sum index in
// O(log n) plus the size of the window. It agrees with computeLinear.
func computeIndexed(idx *OffsetIndex, vp Viewport, overscan int, key KeyFunc) Window {
	count := idx.Len()
	if count == 0 {
		return Window{}
	}

	start := idx.lastAtMost(vp.ScrollOffset)
	if start >= count {
		start = -1
	}
	end := 0
	if bottom := vp.ScrollOffset + vp.Size; bottom > 0 {
		end = idx.lastBelow(bottom) + 1
	}
	if end >= count {
		end = -1
	}

	w := bounds(count, start, end, overscan)
	w.TotalHeight = idx.Total()
	w.Rows = make([]Row, 0, w.End-w.Start+1)
	offset := idx.Prefix(w.Start)
	for i := w.Start; i <= w.End; i++ {
		h := idx.Height(i)
		w.Rows = append(w.Rows, Row{Index: i, Key: key(i), Height: h, OffsetTop: offset})
		offset += h
	}
	return w
}

// bounds turns the raw edge indices into a clamped window. An edge that was
// never reached (-1) resolves to the last item.
func bounds(count, start, end, overscan int) Window {
	// Capped at count so start-overscan and end+overscan cannot overflow.
	overscan = min(max(0, overscan), count)
	last := count - 1

	endFound := end >= 0
	if start < 0 {
		start = last
	}
	if !endFound {
		end = last
	}
	end = max(end, start)

	visibleEnd := end
	if endFound {
		// end is the first row at or below the viewport bottom.
		visibleEnd = max(start, end-1)
	}

	return Window{
		Start:        max(0, start-overscan),
		End:          min(last, end+overscan),
		VisibleStart: start,
		VisibleEnd:   visibleEnd,
	}
}
