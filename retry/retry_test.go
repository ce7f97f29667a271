package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestIsRetriable_HTTPStatus(t *testing.T) {
	require.True(t, IsRetriable(Outcome{Err: errors.New("x"), StatusCode: http.StatusTooManyRequests}))
	require.True(t, IsRetriable(Outcome{Err: errors.New("x"), StatusCode: http.StatusServiceUnavailable}))
	require.False(t, IsRetriable(Outcome{Err: errors.New("x"), StatusCode: http.StatusBadRequest}))
}

func TestIsRetriable_ProviderErrorCode(t *testing.T) {
	require.True(t, IsRetriable(Outcome{Err: errors.New("x"), StatusCode: http.StatusServiceUnavailable, ProviderErrorCode: "overloaded_error"}))
	require.True(t, IsRetriable(Outcome{Err: errors.New("x"), ProviderErrorCode: "rate_limit_error"}))
	require.False(t, IsRetriable(Outcome{Err: errors.New("x"), StatusCode: http.StatusOK, ProviderErrorCode: "invalid_request_error"}))
}

func TestIsRetriable_TransportErrorNoResponse(t *testing.T) {
	require.True(t, IsRetriable(Outcome{Err: context.DeadlineExceeded}))
	require.False(t, IsRetriable(Outcome{Err: context.Canceled}))
}

func TestDo_SucceedsWithoutRetryOnFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultConfig(), func(ctx context.Context, n int) (Outcome, error) {
		calls++
		return Outcome{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDo_RetriesRetriableThenSucceeds(t *testing.T) {
	calls := 0
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	err := Do(context.Background(), cfg, func(ctx context.Context, n int) (Outcome, error) {
		calls++
		if n < 2 {
			return Outcome{Err: errors.New("busy"), StatusCode: http.StatusServiceUnavailable}, nil
		}
		return Outcome{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestDo_NonRetriableSurfacesImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultConfig(), func(ctx context.Context, n int) (Outcome, error) {
		calls++
		return Outcome{Err: errors.New("bad request"), StatusCode: http.StatusBadRequest}, nil
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	err := Do(context.Background(), cfg, func(ctx context.Context, n int) (Outcome, error) {
		calls++
		return Outcome{Err: errors.New("busy"), StatusCode: http.StatusTooManyRequests}, nil
	})
	require.Error(t, err)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, 3, exhausted.Attempts)
	require.Equal(t, 3, calls)
}

// TestDo_RetryAfterFloor checks that an upstream 429 carrying
// Retry-After: 2 delays the next attempt by at least 2s.
func TestDo_RetryAfterFloor(t *testing.T) {
	cfg := Config{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 50 * time.Millisecond}
	start := time.Now()
	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context, n int) (Outcome, error) {
		calls++
		if n == 1 {
			return Outcome{Err: errors.New("busy"), StatusCode: http.StatusTooManyRequests, RetryAfter: 200 * time.Millisecond}, nil
		}
		return Outcome{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestParseRetryAfter_Seconds(t *testing.T) {
	require.Equal(t, 2*time.Second, ParseRetryAfter("2"))
}

func TestParseRetryAfter_HTTPDate(t *testing.T) {
	future := time.Now().Add(5 * time.Second).UTC().Format(http.TimeFormat)
	d := ParseRetryAfter(future)
	require.Greater(t, d, time.Duration(0))
	require.LessOrEqual(t, d, 6*time.Second)
}

func TestParseRetryAfter_Empty(t *testing.T) {
	require.Zero(t, ParseRetryAfter(""))
}

func TestDo_LimiterPacesAttempts(t *testing.T) {
	cfg := Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
		Limiter:     rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
	}
	start := time.Now()
	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context, n int) (Outcome, error) {
		calls++
		if n < 3 {
			return Outcome{Err: errors.New("busy"), StatusCode: http.StatusServiceUnavailable}, nil
		}
		return Outcome{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDo_ContextCancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: time.Second}
	calls := 0
	err := Do(ctx, cfg, func(ctx context.Context, n int) (Outcome, error) {
		calls++
		if n == 1 {
			cancel()
			return Outcome{Err: errors.New("busy"), StatusCode: http.StatusServiceUnavailable}, nil
		}
		return Outcome{}, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
