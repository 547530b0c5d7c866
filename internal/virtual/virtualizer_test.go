package virtual

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/vlist/internal/pubsub"
	"github.com/zjrosen/vlist/internal/tracing"
)

func newVirtualizer(t *testing.T, mutate func(*Options)) (*Virtualizer, *manualClock) {
	t.Helper()
	clock := newManualClock()
	opts := DefaultOptions()
	opts.Clock = clock
	mutate(&opts)

	v, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v, clock
}

func TestNew_StrategySelection(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    Strategy
		wantErr error
	}{
		{name: "none", opts: Options{}, wantErr: ErrNoSizeStrategy},
		{name: "fixed", opts: Options{FixedHeight: 40}, want: StrategyFixed},
		{name: "computed", opts: Options{ComputedHeight: func(int) float64 { return 1 }}, want: StrategyComputed},
		{name: "estimate func", opts: Options{Estimate: func(int) float64 { return 16 }}, want: StrategyMeasured},
		{name: "estimate height", opts: Options{EstimateHeight: 16}, want: StrategyMeasured},
		{name: "fixed and computed", opts: Options{FixedHeight: 4, ComputedHeight: func(int) float64 { return 1 }}, wantErr: ErrConflictingStrategy},
		{name: "fixed and estimate", opts: Options{FixedHeight: 4, EstimateHeight: 2}, wantErr: ErrConflictingStrategy},
		{name: "negative fixed", opts: Options{FixedHeight: -1}, wantErr: ErrInvalidFixedHeight},
		{name: "infinite fixed", opts: Options{FixedHeight: math.Inf(1)}, wantErr: ErrInvalidFixedHeight},
		{name: "negative estimate", opts: Options{EstimateHeight: -3}, wantErr: ErrInvalidEstimate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, v)
				return
			}
			require.NoError(t, err)
			defer v.Close()
			require.Equal(t, tt.want, v.Strategy())
		})
	}
}

func TestVirtualizer_EmptyUntilResized(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.FixedHeight = 40 })
	v.SetItemCount(1000)

	require.True(t, v.Compute().Empty())

	v.OnResize(600)
	w := v.Compute()
	require.Equal(t, 0, w.Start)
	require.Equal(t, 18, w.End)
	require.Equal(t, 40000.0, w.TotalHeight)
}

func TestVirtualizer_ZeroItems(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.EstimateHeight = 16 })
	v.OnResize(600)

	w := v.Compute()
	require.True(t, w.Empty())
	require.Zero(t, w.TotalHeight)
	require.Zero(t, v.TotalHeight())
	require.Zero(t, v.ScrollToIndex(10, AlignStart))
}

func TestVirtualizer_MeasurementShiftsLaterOffsets(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.EstimateHeight = 16 })
	v.SetItemCount(100)
	v.OnResize(200)

	before := v.Compute()
	require.Equal(t, before.Rows[5].OffsetTop+16, before.Rows[6].OffsetTop)

	require.True(t, v.OnMeasure(5, 50))
	after := v.Compute()
	require.Equal(t, 50.0, after.Rows[5].Height)
	require.Equal(t, after.Rows[5].OffsetTop+50, after.Rows[6].OffsetTop)
	require.Equal(t, 100*16.0+34, after.TotalHeight)
	require.True(t, v.IsMeasured(5))
	require.False(t, v.IsMeasured(6))
}

func TestVirtualizer_MeasuredMatchesLinearAfterReports(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.EstimateHeight = 10 })
	v.SetItemCount(500)
	v.OnResize(300)

	// Interleave reports with computes so the index is patched in place.
	for i := 0; i < 500; i += 7 {
		v.OnMeasure(i, float64(i%23))
		if i%5 == 0 {
			_ = v.Compute()
		}
	}
	v.OnScroll(1234)

	got := v.Compute()
	want := computeLinear(500, v.measured, Viewport{ScrollOffset: 1234, Size: 300}, v.Overscan())
	want.IsScrolling = true
	require.Equal(t, want, got)
}

func TestVirtualizer_OnMeasureIgnoredOutsideMeasuredStrategy(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.FixedHeight = 10 })
	v.SetItemCount(10)

	require.False(t, v.OnMeasure(1, 99))
	require.True(t, v.IsMeasured(1))
}

func TestVirtualizer_OnMeasureRejectsOutOfRange(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.EstimateHeight = 10 })
	v.SetItemCount(3)

	require.False(t, v.OnMeasure(3, 20))
	require.False(t, v.OnMeasure(-1, 20))
	require.False(t, v.OnMeasure(1, -20))
	require.True(t, v.OnMeasure(2, 20))
}

func TestVirtualizer_ResetForgetsMeasurements(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.EstimateHeight = 10 })
	v.SetItemCount(5)
	v.OnResize(100)
	v.OnMeasure(0, 40)
	require.Equal(t, 80.0, v.TotalHeight())

	v.Reset()
	require.Equal(t, 50.0, v.TotalHeight())
}

func TestVirtualizer_ScrollingFlag(t *testing.T) {
	v, clock := newVirtualizer(t, func(o *Options) {
		o.FixedHeight = 10
		o.ScrollingDelay = 150 * time.Millisecond
	})
	v.SetItemCount(100)
	v.OnResize(50)

	v.OnScroll(100)
	w := v.Compute()
	require.True(t, w.IsScrolling)
	require.Equal(t, 10, w.VisibleStart)

	clock.Advance(150 * time.Millisecond)
	require.False(t, v.Compute().IsScrolling)
}

func TestVirtualizer_SetOverscan(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.FixedHeight = 10 })
	v.SetItemCount(100)
	v.OnResize(50)
	v.OnScroll(200)

	v.SetOverscan(0)
	require.Equal(t, 20, v.Compute().Start)
	v.SetOverscan(5)
	require.Equal(t, 15, v.Compute().Start)
	v.SetOverscan(-2)
	require.Zero(t, v.Overscan())
}

func TestVirtualizer_KeyFuncOnRows(t *testing.T) {
	keys := []string{"a", "b", "c", "d"}
	v, _ := newVirtualizer(t, func(o *Options) {
		o.EstimateHeight = 10
		o.KeyFunc = func(i int) string { return keys[i] }
	})
	v.SetItemCount(len(keys))
	v.OnResize(100)

	w := v.Compute()
	require.Equal(t, "c", w.Rows[2].Key)
}

func TestVirtualizer_ScrollToIndex(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.FixedHeight = 10 })
	v.SetItemCount(100)
	v.OnResize(50)

	require.Equal(t, 300.0, v.ScrollToIndex(30, AlignStart))
	require.Equal(t, 260.0, v.ScrollToIndex(30, AlignEnd))
	require.Equal(t, 280.0, v.ScrollToIndex(30, AlignCenter))
	require.Equal(t, 950.0, v.ScrollToIndex(99, AlignStart), "clamped to the last page")
	require.Equal(t, 950.0, v.ScrollToIndex(500, AlignStart), "index clamped to the last item")
	require.Zero(t, v.ScrollToIndex(0, AlignEnd))

	// Auto: already visible stays put, otherwise scroll the minimum.
	v.OnScroll(100)
	require.Equal(t, 100.0, v.ScrollToIndex(12, AlignAuto))
	require.Equal(t, 50.0, v.ScrollToIndex(5, AlignAuto))
	require.Equal(t, 160.0, v.ScrollToIndex(20, AlignAuto))
}

func TestVirtualizer_ScrollToIndexVariableHeights(t *testing.T) {
	heights := []float64{10, 20, 30, 40, 50}
	v, _ := newVirtualizer(t, func(o *Options) {
		o.ComputedHeight = func(i int) float64 { return heights[i] }
	})
	v.SetItemCount(len(heights))
	v.OnResize(60)

	require.Equal(t, 60.0, v.ScrollToIndex(3, AlignStart))
	require.Equal(t, 90.0, v.ScrollToIndex(4, AlignStart), "clamped to total-size")
}

func TestVirtualizer_Attach(t *testing.T) {
	v, _ := newVirtualizer(t, func(o *Options) { o.FixedHeight = 10 })
	v.SetItemCount(100)

	broker := pubsub.NewBroker[ViewportEvent]()
	defer broker.Close()

	detach := v.Attach(context.Background(), broker)
	broker.Publish(pubsub.ViewportEvent, ViewportEvent{Kind: ViewportResized, Value: 50})
	broker.Publish(pubsub.ViewportEvent, ViewportEvent{Kind: ViewportScrolled, Value: 300})

	require.Eventually(t, func() bool {
		w := v.Compute()
		return !w.Empty() && w.VisibleStart == 30
	}, time.Second, 5*time.Millisecond)
	require.True(t, v.ScrollState().IsScrolling())

	detach()
	detach()
	require.False(t, v.ScrollState().IsScrolling(), "detach cancels the pending timer")
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)

	broker.Publish(pubsub.ViewportEvent, ViewportEvent{Kind: ViewportScrolled, Value: 700})
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 300.0, v.ScrollState().Offset())
}

func TestVirtualizer_AttachNilSource(t *testing.T) {
	v, clock := newVirtualizer(t, func(o *Options) { o.FixedHeight = 10 })
	v.OnScroll(10)
	require.Equal(t, 1, clock.pending())

	detach := v.Attach(context.Background(), nil)
	detach()
	require.Zero(t, clock.pending())
	require.False(t, v.ScrollState().IsScrolling())
}

func TestVirtualizer_AttachStopsOnContextCancel(t *testing.T) {
	v, clock := newVirtualizer(t, func(o *Options) { o.FixedHeight = 10 })
	broker := pubsub.NewBroker[ViewportEvent]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	detach := v.Attach(ctx, broker)
	broker.Publish(pubsub.ViewportEvent, ViewportEvent{Kind: ViewportScrolled, Value: 30})
	require.Eventually(t, func() bool { return v.ScrollState().IsScrolling() }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, clock.pending())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return clock.pending() == 0 }, time.Second, 5*time.Millisecond,
		"cancelling the context cancels the settle timer")
	require.False(t, v.ScrollState().IsScrolling())
	detach()
}

func TestVirtualizer_ComputeRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	v, _ := newVirtualizer(t, func(o *Options) {
		o.FixedHeight = 40
		o.Tracer = tp.Tracer("test")
	})
	v.SetItemCount(1000)
	v.OnResize(600)
	_ = v.Compute()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, tracing.SpanCompute, spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	require.Equal(t, "fixed", attrs[tracing.AttrStrategy].AsString())
	require.EqualValues(t, 1000, attrs[tracing.AttrItemCount].AsInt64())
	require.EqualValues(t, 18, attrs[tracing.AttrRangeEnd].AsInt64())
}
