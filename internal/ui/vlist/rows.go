package vlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/zjrosen/vlist/internal/cachemanager"
	"github.com/zjrosen/vlist/internal/ui/markdown"
	"github.com/zjrosen/vlist/internal/ui/styles"
	"github.com/zjrosen/vlist/internal/virtual"
)

// wrapLines word-wraps text at width, hard-breaking words longer than width.
// Returns nil for blank text.
func wrapLines(text string, width int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	width = max(1, width)
	return strings.Split(wrap.String(wordwrap.String(text, width), width), "\n")
}

// computedHeight is the line count of an item in computed mode: the title
// plus the body wrapped at wrapWidth.
func computedHeight(item Item, wrapWidth int) float64 {
	return float64(1 + len(wrapLines(item.Body, wrapWidth)))
}

// rowRenderer turns items into row strings for one size strategy. Bodies are
// cached by item ID and width; titles are cheap and rendered every frame.
type rowRenderer struct {
	strategy   virtual.Strategy
	style      string
	wrapWidth  int
	fixedLines int

	width  int
	md     *markdown.Renderer
	bodies *cachemanager.ReadThrough[string, string, Item]
}

func newRowRenderer(strategy virtual.Strategy, style string, wrapWidth, fixedLines int) *rowRenderer {
	r := &rowRenderer{
		strategy:   strategy,
		style:      style,
		wrapWidth:  max(1, wrapWidth),
		fixedLines: max(1, fixedLines),
	}
	r.bodies = cachemanager.NewReadThrough[string, string, Item](
		cachemanager.NewInMemory[string, string]("rows", cachemanager.NoExpiration),
		r.renderBody,
		false,
	)
	return r
}

// setWidth changes the content width. Cached bodies are dropped and, in
// measured mode, the markdown renderer is rebuilt for the new wrap width.
// Returns true when the width changed.
func (r *rowRenderer) setWidth(width int) (bool, error) {
	width = max(1, width)
	if width == r.width {
		return false, nil
	}
	r.width = width
	r.bodies.Cache().Flush()

	if r.strategy == virtual.StrategyMeasured {
		md, err := markdown.New(width, r.style)
		if err != nil {
			return true, fmt.Errorf("creating markdown renderer: %w", err)
		}
		r.md = md
	}
	return true, nil
}

func (r *rowRenderer) key(item Item) string {
	return fmt.Sprintf("%s|%d", item.ID, r.width)
}

// hasBody reports whether the body for item is already rendered.
func (r *rowRenderer) hasBody(item Item) bool {
	_, ok := r.bodies.Cache().Get(r.key(item))
	return ok
}

// row renders the title line and body of item.
func (r *rowRenderer) row(item Item, selected bool) (string, error) {
	body, err := r.bodies.Get(r.key(item), item)
	if err != nil {
		return "", err
	}
	title := r.title(item, selected)
	if body == "" {
		return title, nil
	}
	return title + "\n" + body, nil
}

// placeholder renders the title and lines-1 muted filler lines.
func (r *rowRenderer) placeholder(item Item, lines int, selected bool) string {
	out := make([]string, 1, max(1, lines))
	out[0] = r.title(item, selected)
	filler := styles.PlaceholderStyle.Render(strings.Repeat("·", min(r.width, 12)))
	for len(out) < lines {
		out = append(out, filler)
	}
	return strings.Join(out, "\n")
}

func (r *rowRenderer) title(item Item, selected bool) string {
	text := runewidth.Truncate(item.Title, max(1, r.width-2), "…")
	if selected {
		return styles.SelectionIndicatorStyle.Render(">") + " " + styles.SelectedTitleStyle.Render(text)
	}
	return "  " + styles.TitleStyle.Render(text)
}

func (r *rowRenderer) renderBody(item Item) (string, error) {
	var lines []string
	switch r.strategy {
	case virtual.StrategyMeasured:
		if r.md == nil || strings.TrimSpace(item.Body) == "" {
			return "", nil
		}
		out, err := r.md.Render(item.Body)
		if err != nil {
			return "", fmt.Errorf("rendering %s: %w", item.ID, err)
		}
		lines = strings.Split(out, "\n")
	case virtual.StrategyComputed:
		lines = wrapLines(item.Body, r.wrapWidth)
	default:
		lines = wrapLines(item.Body, max(1, r.width-2))
		if n := r.fixedLines - 1; len(lines) > n {
			lines = lines[:n]
		}
		for len(lines) < r.fixedLines-1 {
			lines = append(lines, "")
		}
	}

	for i, line := range lines {
		if r.strategy != virtual.StrategyMeasured {
			line = "  " + styles.BodyStyle.Render(line)
		}
		lines[i] = ansi.Truncate(line, r.width, "")
	}
	return strings.Join(lines, "\n"), nil
}

// fitLines splits s into exactly n lines, truncating or padding with blanks.
func fitLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		return lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines
}

// measure returns the rendered height of s in lines.
func measure(s string) float64 {
	return float64(lipgloss.Height(s))
}
