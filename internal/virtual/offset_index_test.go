package virtual

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOffsetIndex_Basics(t *testing.T) {
	heights := []float64{10, 20, 30, 40}
	x := NewOffsetIndex(len(heights), Computed(func(i int) float64 { return heights[i] }))

	require.Equal(t, 4, x.Len())
	require.Equal(t, 0.0, x.Prefix(0))
	require.Equal(t, 30.0, x.Prefix(2))
	require.Equal(t, 100.0, x.Total())
	require.Equal(t, 100.0, x.Prefix(99), "prefix past the end is the total")

	x.Set(1, 50)
	require.Equal(t, 50.0, x.Height(1))
	require.Equal(t, 60.0, x.Prefix(2))
	require.Equal(t, 130.0, x.Total())
}

func TestOffsetIndex_Search(t *testing.T) {
	heights := []float64{10, 0, 20, 10}
	x := NewOffsetIndex(len(heights), Computed(func(i int) float64 { return heights[i] }))

	// Prefixes: 0, 10, 10, 30, 40.
	require.Equal(t, 0, x.lastAtMost(5))
	require.Equal(t, 2, x.lastAtMost(10))
	require.Equal(t, 4, x.lastAtMost(40))
	require.Equal(t, 0, x.lastBelow(10))
	require.Equal(t, 2, x.lastBelow(11))
	require.Equal(t, 3, x.lastBelow(40))
}

func TestOffsetIndex_Empty(t *testing.T) {
	x := NewOffsetIndex(0, Fixed(10))
	require.Zero(t, x.Len())
	require.Zero(t, x.Total())
	require.Zero(t, x.lastAtMost(100))
	require.True(t, computeIndexed(x, Viewport{Size: 10}, 3, IndexKey).Empty())
}

func TestOffsetIndex_MatchesNaivePrefix(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		heights := drawHeights(rt)
		x := NewOffsetIndex(len(heights), Computed(func(i int) float64 { return heights[i] }))

		updates := rapid.IntRange(0, 20).Draw(rt, "updates")
		for range updates {
			i := rapid.IntRange(0, len(heights)-1).Draw(rt, "i")
			h := float64(rapid.IntRange(0, 60).Draw(rt, "h"))
			heights[i] = h
			x.Set(i, h)
		}

		var prefix float64
		for k := 0; k <= len(heights); k++ {
			require.Equal(rt, prefix, x.Prefix(k), "prefix %d", k)
			if k < len(heights) {
				require.Equal(rt, heights[k], x.Height(k))
				prefix += heights[k]
			}
		}

		v := float64(rapid.IntRange(0, int(prefix)+10).Draw(rt, "v"))
		k := x.lastAtMost(v)
		require.LessOrEqual(rt, x.Prefix(k), v)
		if k < len(heights) {
			require.Greater(rt, x.Prefix(k+1), v)
		}
	})
}
