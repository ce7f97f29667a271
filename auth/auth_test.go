package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatic_ReturnsConfiguredKey(t *testing.T) {
	s := NewStatic("sk-test")
	tok, err := s.Bearer(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sk-test", tok)
}

// TestCell_SingleFlight checks that N concurrent bearer() calls straddling
// expiry produce exactly one token endpoint call.
func TestCell_SingleFlight(t *testing.T) {
	c := newCell(time.Second)
	var calls int64

	fetch := func(context.Context) (string, time.Time, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return "tok-1", time.Now().Add(time.Hour), nil
	}

	const n = 100
	done := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			tok, err := c.getOrRefresh(context.Background(), fetch)
			require.NoError(t, err)
			done <- tok
		}()
	}
	for i := 0; i < n; i++ {
		require.Equal(t, "tok-1", <-done)
	}
	require.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestCell_ServesCachedTokenWithoutRefresh(t *testing.T) {
	c := newCell(time.Second)
	c.store("cached", time.Now().Add(time.Hour))

	var calls int64
	fetch := func(context.Context) (string, time.Time, error) {
		atomic.AddInt64(&calls, 1)
		return "new", time.Now().Add(time.Hour), nil
	}

	tok, err := c.getOrRefresh(context.Background(), fetch)
	require.NoError(t, err)
	require.Equal(t, "cached", tok)
	require.Zero(t, atomic.LoadInt64(&calls))
}

func TestCell_RefreshAheadOfExpiry(t *testing.T) {
	c := newCell(5 * time.Second)
	c.store("stale", time.Now().Add(2*time.Second))

	fetch := func(context.Context) (string, time.Time, error) {
		return "fresh", time.Now().Add(time.Hour), nil
	}

	tok, err := c.getOrRefresh(context.Background(), fetch)
	require.NoError(t, err)
	require.Equal(t, "fresh", tok)
}

func TestCell_FailedRefreshNotCached(t *testing.T) {
	c := newCell(time.Second)

	calls := 0
	fetch := func(context.Context) (string, time.Time, error) {
		calls++
		if calls == 1 {
			return "", time.Time{}, assertErr
		}
		return "ok", time.Now().Add(time.Hour), nil
	}

	_, err := c.getOrRefresh(context.Background(), fetch)
	require.Error(t, err)

	tok, err := c.getOrRefresh(context.Background(), fetch)
	require.NoError(t, err)
	require.Equal(t, "ok", tok)
}

var assertErr = errTest("refresh failed")

type errTest string

func (e errTest) Error() string { return string(e) }
