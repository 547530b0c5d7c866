package vlist

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/vlist/internal/ui/styles"
)

const (
	scrollbarThumb = "█"
	scrollbarTrack = "░"
)

// thumbBounds returns the first row and height of the scrollbar thumb for a
// track of viewport rows over total lines scrolled to offset.
func thumbBounds(total, viewport, offset int) (start, height int) {
	if total <= 0 || viewport <= 0 {
		return 0, 0
	}
	if total <= viewport {
		return 0, viewport
	}

	height = max(1, viewport*viewport/total)
	track := viewport - height
	maxOffset := total - viewport
	if track <= 0 {
		return 0, height
	}

	offset = max(0, min(offset, maxOffset))
	start = track * offset / maxOffset
	return max(0, min(start, track)), height
}

// renderScrollbar draws a one-column scrollbar of viewport rows. Content that
// fits gets a blank column so the list width does not jump.
func renderScrollbar(total, viewport, offset int) string {
	if viewport <= 0 || total <= 0 {
		return ""
	}

	lines := make([]string, viewport)
	if total <= viewport {
		for i := range lines {
			lines[i] = " "
		}
		return strings.Join(lines, "\n")
	}

	start, height := thumbBounds(total, viewport, offset)
	track := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	thumb := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)
	for row := range lines {
		if row >= start && row < start+height {
			lines[row] = thumb.Render(scrollbarThumb)
		} else {
			lines[row] = track.Render(scrollbarTrack)
		}
	}
	return strings.Join(lines, "\n")
}
