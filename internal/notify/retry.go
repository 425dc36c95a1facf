package notify

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// transientError marks a delivery failure that is safe to retry.
type transientError struct {
	err    error
	status int
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// isTransientStatus reports whether a webhook reply is worth retrying.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryPolicy is exponential backoff with jitter for webhook delivery.
type retryPolicy struct {
	attempts   int
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		attempts:   3,
		initial:    200 * time.Millisecond,
		max:        2 * time.Second,
		multiplier: 2.0,
		jitter:     0.25,
	}
}

// do runs fn until it succeeds, returns a non-transient error, the attempts
// run out, or ctx is done.
func (p retryPolicy) do(ctx context.Context, fn func(ctx context.Context) error) error {
	n := max(p.attempts, 1)
	var lastErr error
	for attempt := 0; attempt < n; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil || ctx.Err() != nil || !isTransient(lastErr) {
			return lastErr
		}
		if attempt == n-1 {
			break
		}

		zap.L().Debug("notify: retrying webhook",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := float64(p.initial) * math.Pow(p.multiplier, float64(attempt))
	if delay > float64(p.max) {
		delay = float64(p.max)
	}
	if p.jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * p.jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
