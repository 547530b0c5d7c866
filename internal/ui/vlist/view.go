package vlist

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/vlist/internal/log"
	"github.com/zjrosen/vlist/internal/ui/styles"
	"github.com/zjrosen/vlist/internal/virtual"
)

// View renders the visible rows, the scrollbar, a status line and help.
// Rows are wrapped in zone marks; the caller must zone.Scan the final frame.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	listHeight := m.listHeight()
	w := m.virt.Compute()

	var body string
	if len(m.store.items) == 0 {
		body = styles.EmptyStyle.Render("  No items")
	} else {
		body = m.renderWindow(w, listHeight)
	}
	body = lipgloss.NewStyle().Width(m.contentWidth()).Height(listHeight).MaxHeight(listHeight).Render(body)

	if m.showScrollbar {
		bar := renderScrollbar(int(math.Ceil(w.TotalHeight)), listHeight, m.offset)
		if bar != "" {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", bar)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusLine(w), m.help.View(m.keys))
}

// renderWindow lays out the rows of w and cuts the listHeight lines starting
// at the scroll offset. Each row's visible part is marked as a click zone.
func (m Model) renderWindow(w virtual.Window, listHeight int) string {
	if w.Empty() || listHeight == 0 {
		return ""
	}

	top, bottom := m.offset, m.offset+listHeight
	segments := make([]string, 0, len(w.Rows))
	for _, row := range w.Rows {
		rowTop := int(math.Round(row.OffsetTop))
		n := max(0, int(math.Round(row.Height)))
		if n == 0 || rowTop >= bottom || rowTop+n <= top {
			continue
		}

		lines := fitLines(m.rowContent(row, w.IsScrolling, n), n)
		from := max(0, top-rowTop)
		to := min(n, bottom-rowTop)
		segments = append(segments, zone.Mark(rowZoneID(row.Index), strings.Join(lines[from:to], "\n")))
	}
	return strings.Join(segments, "\n")
}

// rowContent returns the rendered row, or a placeholder while scrolling if
// its body has not been rendered yet.
func (m Model) rowContent(row virtual.Row, scrolling bool, lines int) string {
	item := m.store.items[row.Index]
	selected := row.Index == m.selected
	if scrolling && !m.rows.hasBody(item) {
		return m.rows.placeholder(item, lines, selected)
	}

	out, err := m.rows.row(item, selected)
	if err != nil {
		log.ErrorErr(log.CatUI, "Failed to render row", err, "index", row.Index)
		return m.rows.placeholder(item, lines, selected)
	}
	return out
}

func (m Model) statusLine(w virtual.Window) string {
	status := fmt.Sprintf(" %s · %d items", m.virt.Strategy(), len(m.store.items))
	if !w.Empty() {
		status += fmt.Sprintf(" · rows %d-%d · visible %d-%d · %d/%d lines",
			w.Start, w.End, w.VisibleStart, w.VisibleEnd, m.offset, int(math.Ceil(w.TotalHeight)))
	}
	status = styles.StatusBarStyle.Render(runewidth.Truncate(status, max(1, m.width-10), "…"))
	if w.IsScrolling {
		status += styles.ScrollingStyle.Render(" scrolling")
	}
	return status
}
