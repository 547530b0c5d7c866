package virtual

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/vlist/internal/log"
	"github.com/zjrosen/vlist/internal/pubsub"
	"github.com/zjrosen/vlist/internal/tracing"
)

// Configuration errors returned by New.
var (
	ErrNoSizeStrategy      = errors.New("no size strategy: set FixedHeight, ComputedHeight or an estimate")
	ErrConflictingStrategy = errors.New("conflicting size strategies: set exactly one of FixedHeight, ComputedHeight or an estimate")
	ErrInvalidFixedHeight  = errors.New("fixed height must be a positive finite number")
	ErrInvalidEstimate     = errors.New("estimate height must be a non-negative finite number")
)

// Strategy names the size strategy a Virtualizer was built with.
type Strategy string

const (
	StrategyFixed    Strategy = "fixed"
	StrategyComputed Strategy = "computed"
	StrategyMeasured Strategy = "measured"
)

// Options configures a Virtualizer. Start from DefaultOptions; exactly one of
// FixedHeight, ComputedHeight or Estimate/EstimateHeight must be set.
type Options struct {
	// FixedHeight gives every item the same height.
	FixedHeight float64
	// ComputedHeight derives each height from its index.
	ComputedHeight func(index int) float64
	// Estimate is the placeholder height of never-measured items.
	// Selects the measured strategy.
	Estimate func(index int) float64
	// EstimateHeight is a constant Estimate. Ignored when Estimate is set.
	EstimateHeight float64

	// KeyFunc maps indices to stable keys. Defaults to IndexKey.
	KeyFunc KeyFunc
	// Overscan is the number of extra rows beyond each visible edge.
	// Negative values are treated as zero.
	Overscan int
	// ScrollingDelay is the debounce window of the scrolling flag.
	// Defaults to DefaultScrollingDelay if zero.
	ScrollingDelay time.Duration

	// Clock provides time operations. Defaults to RealClock if nil.
	Clock Clock
	// Tracer records a span per Compute. Defaults to a no-op tracer.
	Tracer trace.Tracer
}

// DefaultOptions returns Options with the default overscan and delay and no
// size strategy.
func DefaultOptions() Options {
	return Options{
		Overscan:       DefaultOverscan,
		ScrollingDelay: DefaultScrollingDelay,
	}
}

// ViewportEventKind distinguishes push notifications from a viewport source.
type ViewportEventKind int

const (
	// ViewportScrolled carries a new scroll offset.
	ViewportScrolled ViewportEventKind = iota
	// ViewportResized carries a new viewport size.
	ViewportResized
)

// ViewportEvent is a scroll or resize notification from the host.
type ViewportEvent struct {
	Kind  ViewportEventKind
	Value float64
}

// Virtualizer owns the viewport state, item count and size strategy of one
// list and computes its renderable Window on demand.
type Virtualizer struct {
	strategy Strategy
	resolver Resolver
	fixed    float64
	measured *Measured
	key      KeyFunc
	scroll   *ScrollState
	tracer   trace.Tracer

	mu       sync.Mutex
	overscan int
	count    int
	size     float64
	mounted  bool
	index    *OffsetIndex // nil for fixed; rebuilt lazily when nil
}

// New validates opts and creates a Virtualizer.
func New(opts Options) (*Virtualizer, error) {
	resolver, strategy, err := resolverFor(opts)
	if err != nil {
		return nil, err
	}

	key := opts.KeyFunc
	if key == nil {
		key = IndexKey
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("virtual")
	}

	v := &Virtualizer{
		strategy: strategy,
		resolver: resolver,
		key:      key,
		scroll:   NewScrollState(opts.ScrollingDelay, opts.Clock),
		tracer:   tracer,
		overscan: max(0, opts.Overscan),
	}
	switch r := resolver.(type) {
	case Fixed:
		v.fixed = float64(r)
	case *Measured:
		v.measured = r
	}

	log.Debug(log.CatVirtual, "virtualizer created", "strategy", strategy, "overscan", v.overscan)
	return v, nil
}

// resolverFor selects the size strategy described by opts.
func resolverFor(opts Options) (Resolver, Strategy, error) {
	hasFixed := opts.FixedHeight != 0
	hasComputed := opts.ComputedHeight != nil
	hasEstimate := opts.Estimate != nil || opts.EstimateHeight != 0

	set := 0
	for _, b := range []bool{hasFixed, hasComputed, hasEstimate} {
		if b {
			set++
		}
	}
	switch {
	case set == 0:
		return nil, "", ErrNoSizeStrategy
	case set > 1:
		return nil, "", ErrConflictingStrategy
	}

	switch {
	case hasFixed:
		if !validHeight(opts.FixedHeight) || opts.FixedHeight <= 0 {
			return nil, "", fmt.Errorf("%w: got %v", ErrInvalidFixedHeight, opts.FixedHeight)
		}
		return Fixed(opts.FixedHeight), StrategyFixed, nil
	case hasComputed:
		return Computed(opts.ComputedHeight), StrategyComputed, nil
	default:
		estimate := opts.Estimate
		if estimate == nil {
			if !validHeight(opts.EstimateHeight) {
				return nil, "", fmt.Errorf("%w: got %v", ErrInvalidEstimate, opts.EstimateHeight)
			}
			h := opts.EstimateHeight
			estimate = func(int) float64 { return h }
		}
		return NewMeasured(estimate, opts.KeyFunc), StrategyMeasured, nil
	}
}

// Strategy returns the size strategy in use.
func (v *Virtualizer) Strategy() Strategy {
	return v.strategy
}

// ScrollState exposes the scroll tracker, e.g. to subscribe to settle events.
func (v *Virtualizer) ScrollState() *ScrollState {
	return v.scroll
}

// OnScroll records a new scroll offset.
func (v *Virtualizer) OnScroll(offset float64) {
	v.scroll.Notify(offset)
}

// OnResize records a new viewport size. The first call marks the viewport as
// mounted; until then Compute returns an empty window.
func (v *Virtualizer) OnResize(size float64) {
	if !validHeight(size) {
		size = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.size = size
	v.mounted = true
}

// SetItemCount signals that the number or order of items changed.
func (v *Virtualizer) SetItemCount(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.count = max(0, n)
	v.index = nil
}

// ItemCount returns the current item count.
func (v *Virtualizer) ItemCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.count
}

// SetOverscan changes the overscan margin.
func (v *Virtualizer) SetOverscan(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overscan = max(0, n)
}

// Overscan returns the overscan margin.
func (v *Virtualizer) Overscan() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.overscan
}

// OnMeasure records the rendered height of item index. It only applies to
// the measured strategy; invalid reports are logged and dropped. Returns true
// when the stored height changed.
func (v *Virtualizer) OnMeasure(index int, height float64) bool {
	if v.measured == nil {
		log.Debug(log.CatVirtual, "measurement ignored for non-measured strategy", "strategy", v.strategy, "index", index)
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if index < 0 || index >= v.count {
		log.Warn(log.CatVirtual, "ignoring measurement for out-of-range index", "index", index, "count", v.count)
		return false
	}
	if !v.measured.Report(index, height) {
		return false
	}
	if v.index != nil {
		v.index.Set(index, v.measured.Height(index))
	}
	return true
}

// IsMeasured reports whether item index has a recorded size.
func (v *Virtualizer) IsMeasured(index int) bool {
	if v.measured == nil {
		return true
	}
	return v.measured.IsMeasured(index)
}

// Reset forgets every measured size, e.g. after the list was replaced.
func (v *Virtualizer) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.measured != nil {
		v.measured.Reset()
	}
	v.index = nil
}

// Compute returns the renderable window for the current state.
func (v *Virtualizer) Compute() Window {
	_, span := v.tracer.Start(context.Background(), tracing.SpanCompute)
	defer span.End()

	v.mu.Lock()
	w := v.computeLocked()
	v.mu.Unlock()

	w.IsScrolling = v.scroll.IsScrolling()
	span.SetAttributes(
		attribute.String(tracing.AttrStrategy, string(v.strategy)),
		attribute.Int(tracing.AttrItemCount, v.ItemCount()),
		attribute.Int(tracing.AttrRangeStart, w.Start),
		attribute.Int(tracing.AttrRangeEnd, w.End),
		attribute.Float64(tracing.AttrTotalHeight, w.TotalHeight),
	)
	return w
}

func (v *Virtualizer) computeLocked() Window {
	if !v.mounted || v.count == 0 {
		return Window{}
	}

	vp := Viewport{ScrollOffset: v.scroll.Offset(), Size: v.size}.normalized()
	if v.strategy == StrategyFixed {
		return computeFixed(v.count, v.fixed, vp, v.overscan, v.key)
	}
	return computeIndexed(v.offsets(), vp, v.overscan, v.key)
}

// offsets returns the offset index, rebuilding it after a count change or reset.
func (v *Virtualizer) offsets() *OffsetIndex {
	if v.index == nil {
		v.index = NewOffsetIndex(v.count, v.resolver)
	}
	return v.index
}

// TotalHeight returns the summed height of every item.
func (v *Virtualizer) TotalHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.strategy == StrategyFixed {
		return float64(v.count) * v.fixed
	}
	return v.offsets().Total()
}

// Align controls where ScrollToIndex places the target item.
type Align int

const (
	// AlignAuto scrolls as little as possible to bring the item into view.
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// ScrollToIndex returns the scroll offset that shows item index with the
// given alignment, clamped to the scrollable range. The offset is not
// applied; the host scrolls and reports back through OnScroll.
func (v *Virtualizer) ScrollToIndex(index int, align Align) float64 {
	current := v.scroll.Offset()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.count == 0 {
		return 0
	}
	index = max(0, min(index, v.count-1))

	var top, height, total float64
	if v.strategy == StrategyFixed {
		top, height, total = float64(index)*v.fixed, v.fixed, float64(v.count)*v.fixed
	} else {
		idx := v.offsets()
		top, height, total = idx.Prefix(index), idx.Height(index), idx.Total()
	}
	bottom := top + height

	var target float64
	switch align {
	case AlignStart:
		target = top
	case AlignCenter:
		target = top - (v.size-height)/2
	case AlignEnd:
		target = bottom - v.size
	default:
		switch {
		case top < current:
			target = top
		case bottom > current+v.size:
			target = bottom - v.size
		default:
			target = current
		}
	}

	maxOffset := math.Max(0, total-v.size)
	return math.Max(0, math.Min(target, maxOffset))
}

// Attach subscribes to push notifications from src and applies them until
// the returned detach func is called or ctx is cancelled. Detach waits for the
// event loop to exit and cancels any pending scrolling timer; it is safe to
// call more than once. A nil src attaches nothing but the returned detach
// still cancels the timer.
func (v *Virtualizer) Attach(ctx context.Context, src pubsub.Subscriber[ViewportEvent]) (detach func()) {
	var once sync.Once
	if src == nil {
		log.Debug(log.CatVirtual, "attach without viewport source")
		return func() { once.Do(v.scroll.Stop) }
	}

	ctx, cancel := context.WithCancel(ctx)
	events := src.Subscribe(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		// The settle timer must not outlive the subscription, whichever way
		// the loop ends.
		defer v.scroll.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				v.apply(event.Payload)
			}
		}
	}()

	return func() {
		once.Do(func() {
			cancel()
			<-done
			v.scroll.Stop()
		})
	}
}

func (v *Virtualizer) apply(ev ViewportEvent) {
	switch ev.Kind {
	case ViewportScrolled:
		v.OnScroll(ev.Value)
	case ViewportResized:
		v.OnResize(ev.Value)
	default:
		log.Warn(log.CatVirtual, "unknown viewport event", "kind", ev.Kind)
	}
}

// Close releases the scrolling timer and closes scroll event subscriptions.
func (v *Virtualizer) Close() {
	v.scroll.Close()
}
