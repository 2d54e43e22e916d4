package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrRateLimited is returned when an upstream keeps answering 429 after all
// permitted waits, or when the announced wait exceeds the allowed maximum.
var ErrRateLimited = errors.New("rate limited")

// HTTPError is a non-2xx upstream response. RetryAfter carries the wait the
// upstream asked for, when known.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// RetryPolicy defines bounded retry behaviour for an adapter.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	RetryableStatus   []int
	RetryTransport    bool          // retry timeouts and network errors
	MaxWait           time.Duration // upper bound for upstream-requested waits
}

// DefaultRetryPolicy retries rate limits and transient network failures.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		RetryableStatus:   []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		RetryTransport:    true,
		MaxWait:           2 * time.Minute,
	}
}

// NoRetryPolicy performs a single attempt.
func NoRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// CalculateBackoff returns the exponential backoff after the given attempt.
func (rp RetryPolicy) CalculateBackoff(attempt int) time.Duration {
	if attempt <= 0 || rp.InitialBackoff <= 0 {
		return 0
	}
	mult := rp.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	backoff := float64(rp.InitialBackoff) * math.Pow(mult, float64(attempt-1))
	if rp.MaxBackoff > 0 && backoff > float64(rp.MaxBackoff) {
		backoff = float64(rp.MaxBackoff)
	}
	return time.Duration(backoff)
}

// IsRetryable reports whether err warrants another attempt.
func (rp RetryPolicy) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		for _, code := range rp.RetryableStatus {
			if herr.StatusCode == code {
				return true
			}
		}
		return false
	}
	if errors.Is(err, errParse) || errors.Is(err, context.Canceled) {
		return false
	}
	return rp.RetryTransport
}

// wait returns the pause before the next attempt and whether retrying is allowed.
func (rp RetryPolicy) wait(err error, attempt int) (time.Duration, bool) {
	var herr *HTTPError
	if errors.As(err, &herr) && herr.RetryAfter > 0 {
		if rp.MaxWait > 0 && herr.RetryAfter > rp.MaxWait {
			return 0, false
		}
		return herr.RetryAfter, true
	}
	return rp.CalculateBackoff(attempt), true
}

// Retry runs op until it succeeds, fails with a non-retryable error, the
// attempts are exhausted, or ctx ends. Waits are interrupted by ctx.
func Retry(ctx context.Context, rp RetryPolicy, name string, op func(ctx context.Context) error) error {
	attempts := rp.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return errors.Join(lastErr, err)
			}
			return err
		}
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.Debug().Str("operation", name).Int("attempt", attempt).Msg("succeeded after retry")
			}
			return nil
		}
		lastErr = err
		if attempt == attempts || !rp.IsRetryable(err) {
			break
		}
		d, ok := rp.wait(err, attempt)
		if !ok {
			log.Warn().Str("operation", name).Err(err).Msg("upstream wait exceeds limit, giving up")
			break
		}
		log.Warn().Str("operation", name).Int("attempt", attempt).Int("max_attempts", attempts).
			Dur("backoff", d).Err(err).Msg("retrying")
		if !sleep(ctx, d) {
			return errors.Join(lastErr, ctx.Err())
		}
	}
	var herr *HTTPError
	if errors.As(lastErr, &herr) && herr.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w: %w", name, ErrRateLimited, lastErr)
	}
	return fmt.Errorf("%s failed: %w", name, lastErr)
}

// sleep pauses for d or until ctx ends; it reports whether d fully elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
