package virtual

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixed_Height(t *testing.T) {
	r := Fixed(40)
	require.Equal(t, 40.0, r.Height(0))
	require.Equal(t, 40.0, r.Height(999))
}

func TestComputed_SanitizesInvalidHeights(t *testing.T) {
	r := Computed(func(i int) float64 {
		switch i {
		case 0:
			return -5
		case 1:
			return math.NaN()
		case 2:
			return math.Inf(1)
		default:
			return float64(i)
		}
	})

	require.Zero(t, r.Height(0))
	require.Zero(t, r.Height(1))
	require.Zero(t, r.Height(2))
	require.Equal(t, 7.0, r.Height(7))
}

func TestMeasured_EstimateUntilReported(t *testing.T) {
	m := NewMeasured(func(int) float64 { return 16 }, nil)

	require.Equal(t, 16.0, m.Height(5))
	require.False(t, m.IsMeasured(5))

	require.True(t, m.Report(5, 50))
	require.Equal(t, 50.0, m.Height(5))
	require.True(t, m.IsMeasured(5))
	require.Equal(t, 16.0, m.Height(6))
	require.Equal(t, 1, m.Len())
}

func TestMeasured_LastReportWins(t *testing.T) {
	m := NewMeasured(func(int) float64 { return 16 }, nil)

	require.True(t, m.Report(2, 30))
	require.False(t, m.Report(2, 30), "unchanged height is not a change")
	require.True(t, m.Report(2, 12))
	require.Equal(t, 12.0, m.Height(2))
}

func TestMeasured_RejectsInvalidReports(t *testing.T) {
	m := NewMeasured(func(int) float64 { return 16 }, nil)

	require.False(t, m.Report(-1, 10))
	require.False(t, m.Report(3, -1))
	require.False(t, m.Report(3, math.NaN()))
	require.False(t, m.Report(3, math.Inf(1)))
	require.Zero(t, m.Len())

	require.True(t, m.Report(3, 0), "zero is a valid height")
	require.Zero(t, m.Height(3))
}

func TestMeasured_SizesFollowKeys(t *testing.T) {
	keys := []string{"a", "b", "c"}
	m := NewMeasured(func(int) float64 { return 10 }, func(i int) string { return keys[i] })

	m.Report(0, 25)
	require.Equal(t, "a", m.Key(0))

	// "a" moves to the end of the list; its size moves with it.
	keys = []string{"b", "c", "a"}
	require.Equal(t, 10.0, m.Height(0))
	require.Equal(t, 25.0, m.Height(2))
}

func TestMeasured_Reset(t *testing.T) {
	m := NewMeasured(func(int) float64 { return 16 }, nil)
	m.Report(1, 40)
	_ = m.Height(1)
	require.NotZero(t, m.Stats().Hits)

	m.Reset()
	require.Zero(t, m.Len())
	require.Equal(t, 16.0, m.Height(1))
}

func TestIndexKey(t *testing.T) {
	require.Equal(t, "0", IndexKey(0))
	require.Equal(t, "1234", IndexKey(1234))
}
