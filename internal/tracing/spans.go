package tracing

// Span names.
const (
	SpanCompute = "virtual.compute"
	SpanMeasure = "ui.measure_window"
)

// Span attribute keys.
const (
	AttrStrategy    = "virtual.strategy"
	AttrItemCount   = "virtual.item_count"
	AttrRangeStart  = "virtual.range.start"
	AttrRangeEnd    = "virtual.range.end"
	AttrTotalHeight = "virtual.total_height"
	AttrMeasured    = "ui.measured_rows"
)
