package cachemanager

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadThrough_FillsOnMiss(t *testing.T) {
	calls := 0
	rt := NewReadThrough[string, string, int](
		NewInMemory[string, string]("rows", NoExpiration),
		func(n int) (string, error) {
			calls++
			return "row", nil
		},
		false,
	)

	for range 3 {
		got, err := rt.Get("k", 1)
		require.NoError(t, err)
		require.Equal(t, "row", got)
	}
	require.Equal(t, 1, calls)
	require.Equal(t, Stats{Hits: 2, Misses: 1}, rt.Cache().Stats())
}

func TestReadThrough_ErrorsAreNotCached(t *testing.T) {
	fail := true
	rt := NewReadThrough[string, string, struct{}](
		NewInMemory[string, string]("rows", NoExpiration),
		func(struct{}) (string, error) {
			if fail {
				return "", errors.New("render failed")
			}
			return "ok", nil
		},
		false,
	)

	_, err := rt.Get("k", struct{}{})
	require.Error(t, err)
	require.Zero(t, rt.Cache().Len())

	fail = false
	got, err := rt.Get("k", struct{}{})
	require.NoError(t, err)
	require.Equal(t, "ok", got)
}

func TestReadThrough_Bypass(t *testing.T) {
	calls := 0
	rt := NewReadThrough[string, int, int](
		NewInMemory[string, int]("ints", NoExpiration),
		func(n int) (int, error) {
			calls++
			return n * 2, nil
		},
		true,
	)

	got, err := rt.Get("k", 4)
	require.NoError(t, err)
	require.Equal(t, 8, got)
	_, _ = rt.Get("k", 4)
	require.Equal(t, 2, calls)
	require.Zero(t, rt.Cache().Len())
}

func TestReadThrough_Invalidate(t *testing.T) {
	version := 1
	rt := NewReadThrough[string, int, struct{}](
		NewInMemory[string, int]("ints", NoExpiration),
		func(struct{}) (int, error) { return version, nil },
		false,
	)

	got, _ := rt.Get("k", struct{}{})
	require.Equal(t, 1, got)

	version = 2
	got, _ = rt.Get("k", struct{}{})
	require.Equal(t, 1, got, "cached value survives until invalidated")

	rt.Invalidate("k")
	got, _ = rt.Get("k", struct{}{})
	require.Equal(t, 2, got)
}
