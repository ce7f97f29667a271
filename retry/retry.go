// Package retry implements bounded retry with full-jitter exponential
// backoff over upstream dispatch calls, classifying responses as retriable
// or terminal. Retry-After headers floor the next delay; provider overload
// error codes count as retriable alongside transport errors and the usual
// HTTP statuses. An optional golang.org/x/time/rate token bucket
// additionally paces attempts process-wide, bounding how many retries
// across concurrent requests fire in a short window.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Config bounds a retry loop's attempt count and backoff shape.
type Config struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the backoff base for attempt 1.
	BaseDelay time.Duration
	// MaxDelay caps the computed backoff before jitter.
	MaxDelay time.Duration
	// Limiter, when set, additionally paces retry attempts process-wide:
	// before sleeping out a computed backoff, Do also waits for a token
	// from Limiter. This bounds how many retries across concurrently
	// in-flight requests hit the same upstream in a short window, on top
	// of each individual request's own jittered backoff. Nil means no
	// additional pacing.
	Limiter *rate.Limiter
}

// DefaultConfig returns the stock policy: 3 attempts, 500ms base,
// 10s cap, full jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
}

// ExhaustedError reports that every attempt in the budget was retriable but
// still failed.
type ExhaustedError struct {
	Attempts  int
	LastError error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: exhausted after %d attempts: %v", e.Attempts, e.LastError)
}

func (e *ExhaustedError) Unwrap() error { return e.LastError }

// Outcome is what a dispatched attempt reports back to the retry loop: the
// attempt's error (nil on success), the upstream HTTP status if one was
// received, and any Retry-After value the upstream supplied.
type Outcome struct {
	Err        error
	StatusCode int
	// RetryAfter is the upstream-supplied floor for the next delay, or zero
	// if the upstream sent none.
	RetryAfter time.Duration
	// ProviderErrorCode is the provider's JSON error "type"/"code" field,
	// when the body could be parsed enough to extract one (e.g. Anthropic's
	// "overloaded_error").
	ProviderErrorCode string
}

var retriableStatus = map[int]bool{
	http.StatusRequestTimeout:      true, // 408
	http.StatusTooEarly:            true, // 425
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// retriableProviderCodes are provider JSON error type/code strings that
// signal a transient overload condition even when the HTTP status itself
// doesn't appear in retriableStatus (or wasn't surfaced by the transport).
// Anthropic's come from the JSON error envelope; Bedrock's are AWS JSON
// protocol exception names surfaced via the X-Amzn-Errortype header (or the
// body's "__type" field).
var retriableProviderCodes = map[string]bool{
	"overloaded_error":            true,
	"rate_limit_error":            true,
	"ThrottlingException":         true,
	"ServiceUnavailableException": true,
	"ModelTimeoutException":       true,
	"ModelNotReadyException":      true,
}

// IsRetriable classifies an Outcome: a transport error with no
// response, a retriable HTTP status, or a provider-specific overload error
// code.
func IsRetriable(o Outcome) bool {
	if o.Err != nil && o.StatusCode == 0 {
		if errors.Is(o.Err, context.Canceled) {
			return false
		}
		var netErr net.Error
		if errors.As(o.Err, &netErr) {
			return true
		}
		return errors.Is(o.Err, context.DeadlineExceeded)
	}
	if retriableStatus[o.StatusCode] {
		return true
	}
	if o.ProviderErrorCode != "" && retriableProviderCodes[o.ProviderErrorCode] {
		return true
	}
	return false
}

// Do executes attempt repeatedly under cfg's budget. attempt is called once
// per try and must return an Outcome describing what happened; a nil
// Outcome.Err means success and Do returns nil immediately.
//
// Non-retriable outcomes surface immediately as their own Err. Exhausting
// the attempt budget on a retriable outcome returns *ExhaustedError wrapping
// the last Err.
func Do(ctx context.Context, cfg Config, attempt func(ctx context.Context, attemptNum int) (Outcome, error)) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var last Outcome
	for n := 1; n <= cfg.MaxAttempts; n++ {
		outcome, callErr := attempt(ctx, n)
		if callErr != nil {
			return callErr
		}
		if outcome.Err == nil {
			return nil
		}
		last = outcome

		if !IsRetriable(outcome) {
			return outcome.Err
		}
		if n >= cfg.MaxAttempts {
			break
		}

		delay := backoff(cfg, n)
		if outcome.RetryAfter > delay {
			delay = outcome.RetryAfter + jitterAbove(outcome.RetryAfter, cfg)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if cfg.Limiter != nil {
			if err := cfg.Limiter.Wait(ctx); err != nil {
				return err
			}
		}
	}

	return &ExhaustedError{Attempts: cfg.MaxAttempts, LastError: last.Err}
}

// backoff computes attempt n's full-jitter exponential delay: a uniform
// random value in [0, min(cap, base*2^(n-1))].
func backoff(cfg Config, n int) time.Duration {
	capped := float64(cfg.BaseDelay) * math.Pow(2, float64(n-1))
	if capped > float64(cfg.MaxDelay) {
		capped = float64(cfg.MaxDelay)
	}
	if capped <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(capped) + 1))
}

// jitterAbove adds full jitter on top of a Retry-After floor, bounded by the
// same cap used for ordinary backoff, so the floor is respected while still
// avoiding synchronized retries across callers.
func jitterAbove(floor time.Duration, cfg Config) time.Duration {
	if cfg.MaxDelay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(cfg.MaxDelay) + 1))
}

// ParseRetryAfter interprets an HTTP Retry-After header value, which is
// either a number of seconds or an HTTP-date. It returns zero if v is empty
// or unparseable.
func ParseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
