package vlist

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestThumbBounds(t *testing.T) {
	tests := []struct {
		name                  string
		total, viewport, off  int
		wantStart, wantHeight int
	}{
		{name: "empty", total: 0, viewport: 10},
		{name: "no viewport", total: 100, viewport: 0},
		{name: "fits", total: 5, viewport: 10, wantHeight: 10},
		{name: "top", total: 100, viewport: 10, off: 0, wantStart: 0, wantHeight: 1},
		{name: "bottom", total: 100, viewport: 10, off: 90, wantStart: 9, wantHeight: 1},
		{name: "middle", total: 40, viewport: 20, off: 10, wantStart: 5, wantHeight: 10},
		{name: "offset past end", total: 40, viewport: 20, off: 500, wantStart: 10, wantHeight: 10},
		{name: "negative offset", total: 40, viewport: 20, off: -5, wantStart: 0, wantHeight: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, height := thumbBounds(tt.total, tt.viewport, tt.off)
			require.Equal(t, tt.wantStart, start)
			require.Equal(t, tt.wantHeight, height)
		})
	}
}

func TestProperty_ThumbWithinTrack(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		total := rapid.IntRange(1, 100000).Draw(rt, "total")
		viewport := rapid.IntRange(1, 200).Draw(rt, "viewport")
		offset := rapid.IntRange(0, total).Draw(rt, "offset")

		start, height := thumbBounds(total, viewport, offset)
		require.GreaterOrEqual(rt, start, 0)
		require.GreaterOrEqual(rt, height, 1)
		require.LessOrEqual(rt, start+height, viewport)
	})
}

func TestProperty_ScrollbarLineCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		total := rapid.IntRange(1, 5000).Draw(rt, "total")
		viewport := rapid.IntRange(1, 100).Draw(rt, "viewport")
		offset := rapid.IntRange(0, total).Draw(rt, "offset")

		out := renderScrollbar(total, viewport, offset)
		require.Len(rt, strings.Split(out, "\n"), viewport)
	})
}

func TestRenderScrollbar_Invalid(t *testing.T) {
	require.Empty(t, renderScrollbar(0, 10, 0))
	require.Empty(t, renderScrollbar(10, 0, 0))
}

// Run with -update to rewrite golden files: go test -update ./internal/ui/vlist/...

func TestRenderScrollbar_Golden_Fits(t *testing.T) {
	teatest.RequireEqualOutput(t, []byte(renderScrollbar(4, 5, 0)))
}

func TestRenderScrollbar_Golden_Middle(t *testing.T) {
	teatest.RequireEqualOutput(t, []byte(renderScrollbar(1000, 10, 500)))
}

func TestRenderScrollbar_Golden_Bottom(t *testing.T) {
	teatest.RequireEqualOutput(t, []byte(renderScrollbar(40, 8, 32)))
}
