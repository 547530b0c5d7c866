// Package vlist is a Bubble Tea list that renders only the rows its
// virtualizer puts in the window. Rows can have a fixed height, a height
// computed from wrapped text, or a markdown height measured after rendering.
package vlist

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/vlist/internal/config"
	"github.com/zjrosen/vlist/internal/log"
	"github.com/zjrosen/vlist/internal/pubsub"
	"github.com/zjrosen/vlist/internal/tracing"
	"github.com/zjrosen/vlist/internal/virtual"
)

// maxMeasurePasses bounds the measure/recompute loop. Each pass can only
// pull in rows that a previous pass's measurements moved into the window.
const maxMeasurePasses = 8

// wheelStep is the number of lines one mouse wheel notch scrolls.
const wheelStep = 3

// ConfigChangedMsg carries reloaded list settings. Only overscan and
// scrolling delay are applied live; the size strategy is fixed at creation.
type ConfigChangedMsg struct {
	List config.ListConfig
}

// Options configures a Model.
type Options struct {
	List          config.ListConfig
	MarkdownStyle string
	ShowScrollbar bool
	Keys          KeyMap
	Tracer        trace.Tracer
	// Clock drives the scrolling flag. Defaults to the real clock.
	Clock virtual.Clock
}

// DefaultOptions returns Options built from the default config.
func DefaultOptions() Options {
	cfg := config.Defaults()
	return Options{
		List:          cfg.List,
		MarkdownStyle: cfg.Demo.MarkdownStyle,
		ShowScrollbar: cfg.Demo.ShowScrollbar,
		Keys:          DefaultKeyMap(),
	}
}

// itemStore is shared with the virtualizer's size and key callbacks so they
// see reorders made through any copy of the Model.
type itemStore struct {
	items []Item
}

// Model is the list component.
type Model struct {
	virt     *virtual.Virtualizer
	store    *itemStore
	rows     *rowRenderer
	tracer   trace.Tracer
	listener *pubsub.ContinuousListener[virtual.ScrollEvent]
	cancel   context.CancelFunc
	keys     KeyMap
	help     help.Model

	width         int
	height        int
	offset        int
	selected      int
	showScrollbar bool
	err           error
}

// New creates a list over items.
func New(items []Item, opts Options) (Model, error) {
	if err := config.ValidateList(opts.List); err != nil {
		return Model{}, err
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("vlist")
	}
	if len(opts.Keys.Quit.Keys()) == 0 {
		opts.Keys = DefaultKeyMap()
	}

	store := &itemStore{items: items}
	vopts := virtual.DefaultOptions()
	vopts.Overscan = opts.List.Overscan
	vopts.ScrollingDelay = opts.List.ScrollingDelay
	vopts.Clock = opts.Clock
	vopts.Tracer = opts.Tracer
	vopts.KeyFunc = func(i int) string { return store.items[i].ID }

	fixedLines := max(1, int(math.Round(opts.List.FixedHeight)))
	strategy := virtual.StrategyMeasured
	switch opts.List.Strategy {
	case config.StrategyFixed:
		strategy = virtual.StrategyFixed
		vopts.FixedHeight = float64(fixedLines)
	case config.StrategyComputed:
		strategy = virtual.StrategyComputed
		wrapWidth := opts.List.WrapWidth
		vopts.ComputedHeight = func(i int) float64 { return computedHeight(store.items[i], wrapWidth) }
	default:
		// Rows are at least a title line, so a zero estimate still selects
		// the measured strategy.
		vopts.EstimateHeight = max(1, opts.List.EstimateHeight)
	}

	v, err := virtual.New(vopts)
	if err != nil {
		return Model{}, fmt.Errorf("creating virtualizer: %w", err)
	}
	v.SetItemCount(len(items))

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		virt:          v,
		store:         store,
		rows:          newRowRenderer(strategy, opts.MarkdownStyle, opts.List.WrapWidth, fixedLines),
		tracer:        opts.Tracer,
		listener:      pubsub.NewContinuousListener[virtual.ScrollEvent](ctx, v.ScrollState()),
		cancel:        cancel,
		keys:          opts.Keys,
		help:          help.New(),
		showScrollbar: opts.ShowScrollbar,
	}, nil
}

// Init starts listening for scroll settle events.
func (m Model) Init() tea.Cmd {
	return m.listener.Listen()
}

// Close stops the scrolling timer and releases the scroll subscription.
func (m Model) Close() {
	m.cancel()
	m.virt.Close()
}

// Virtualizer exposes the underlying virtualizer.
func (m Model) Virtualizer() *virtual.Virtualizer {
	return m.virt
}

// Items returns the items in display order.
func (m Model) Items() []Item {
	return m.store.items
}

// Selected returns the selected index.
func (m Model) Selected() int {
	return m.selected
}

// Offset returns the scroll offset in lines.
func (m Model) Offset() int {
	return m.offset
}

// Err returns the last render error, if any.
func (m Model) Err() error {
	return m.err
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case pubsub.Event[virtual.ScrollEvent]:
		if !msg.Payload.Scrolling {
			m = m.measure()
		}
		return m, m.listener.Listen()

	case ConfigChangedMsg:
		m.virt.SetOverscan(msg.List.Overscan)
		m.virt.ScrollState().SetDelay(msg.List.ScrollingDelay)
		log.Info(log.CatUI, "Applied list config", "overscan", msg.List.Overscan, "scrolling_delay", msg.List.ScrollingDelay)
		return m.measure(), nil
	}
	return m, nil
}

// SetSize sets the outer dimensions of the list, including status and help.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = max(0, width), max(0, height)

	changed, err := m.rows.setWidth(m.contentWidth())
	if err != nil {
		m.err = err
		log.ErrorErr(log.CatUI, "Failed to resize row renderer", err, "width", m.contentWidth())
	}
	if changed && m.virt.Strategy() == virtual.StrategyMeasured {
		// Wrapped markdown heights depend on the width.
		m.virt.Reset()
	}

	m.virt.OnResize(float64(m.listHeight()))
	m = m.clampOffset()
	return m.measure()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	count := len(m.store.items)
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.virt.OnResize(float64(m.listHeight()))
		return m.clampOffset(), nil
	case count == 0:
		return m, nil
	case key.Matches(msg, m.keys.Down):
		return m.Select(m.selected+1, virtual.AlignAuto), nil
	case key.Matches(msg, m.keys.Up):
		return m.Select(m.selected-1, virtual.AlignAuto), nil
	case key.Matches(msg, m.keys.PageDown):
		m = m.ScrollTo(m.offset + m.listHeight())
		return m.selectFirstVisible(), nil
	case key.Matches(msg, m.keys.PageUp):
		m = m.ScrollTo(m.offset - m.listHeight())
		return m.selectFirstVisible(), nil
	case key.Matches(msg, m.keys.Top):
		return m.Select(0, virtual.AlignStart), nil
	case key.Matches(msg, m.keys.Bottom):
		return m.Select(count-1, virtual.AlignEnd), nil
	case key.Matches(msg, m.keys.Center):
		return m.Select(m.selected, virtual.AlignCenter), nil
	case key.Matches(msg, m.keys.Shuffle):
		return m.Shuffle(time.Now().UnixNano()), nil
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return m.ScrollTo(m.offset - wheelStep)
	case msg.Button == tea.MouseButtonWheelDown:
		return m.ScrollTo(m.offset + wheelStep)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease:
		w := m.virt.Compute()
		for _, row := range w.Rows {
			if z := zone.Get(rowZoneID(row.Index)); z != nil && z.InBounds(msg) {
				m.selected = row.Index
				log.Debug(log.CatUI, "Row clicked", "index", row.Index, "key", row.Key)
				break
			}
		}
	}
	return m
}

// ScrollTo moves the viewport to offset lines, clamped to the content.
func (m Model) ScrollTo(offset int) Model {
	offset = max(0, min(offset, m.maxOffset()))
	if offset == m.offset {
		return m
	}
	m.offset = offset
	m.virt.OnScroll(float64(offset))
	return m
}

// Select moves the selection to index and scrolls it into view with align.
func (m Model) Select(index int, align virtual.Align) Model {
	count := len(m.store.items)
	if count == 0 {
		return m
	}
	m.selected = max(0, min(index, count-1))
	target := m.virt.ScrollToIndex(m.selected, align)
	return m.ScrollTo(int(math.Round(target)))
}

// Shuffle reorders the items. Measured heights follow item IDs, so rows
// measured before the shuffle keep their height.
func (m Model) Shuffle(seed int64) Model {
	items := m.store.items
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: display order only
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	m.virt.SetItemCount(len(items))
	m = m.clampOffset()
	return m.measure()
}

func (m Model) selectFirstVisible() Model {
	w := m.virt.Compute()
	if !w.Empty() {
		m.selected = w.VisibleStart
	}
	return m
}

// measure renders and reports every unmeasured row in the window, repeating
// while measurements shift new rows into it. It is skipped while scrolling;
// placeholders stand in until the scroll settles.
func (m Model) measure() Model {
	if m.virt.Strategy() != virtual.StrategyMeasured || m.virt.ScrollState().IsScrolling() {
		return m
	}

	_, span := m.tracer.Start(context.Background(), tracing.SpanMeasure)
	defer span.End()

	measured := 0
	for range maxMeasurePasses {
		changed := false
		for _, row := range m.virt.Compute().Rows {
			if m.virt.IsMeasured(row.Index) {
				continue
			}
			out, err := m.rows.row(m.store.items[row.Index], false)
			if err != nil {
				m.err = err
				log.ErrorErr(log.CatUI, "Failed to render row", err, "index", row.Index)
				continue
			}
			if m.virt.OnMeasure(row.Index, measure(out)) {
				changed = true
			}
			measured++
		}
		if !changed {
			break
		}
	}

	span.SetAttributes(attribute.Int(tracing.AttrMeasured, measured))
	return m.clampOffset()
}

func (m Model) clampOffset() Model {
	if limit := m.maxOffset(); m.offset > limit {
		m.offset = limit
		m.virt.OnScroll(float64(limit))
	}
	return m
}

func (m Model) maxOffset() int {
	return max(0, int(math.Ceil(m.virt.TotalHeight()))-m.listHeight())
}

// contentWidth is the row width, leaving room for the scrollbar column.
func (m Model) contentWidth() int {
	if m.showScrollbar {
		return max(1, m.width-2)
	}
	return max(1, m.width)
}

// listHeight is the number of lines available to rows.
func (m Model) listHeight() int {
	return max(0, m.height-1-m.helpHeight())
}

func (m Model) helpHeight() int {
	if m.help.ShowAll {
		return 4
	}
	return 1
}

func rowZoneID(index int) string {
	return fmt.Sprintf("vlist-row-%d", index)
}
