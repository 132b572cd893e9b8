package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/wait"
)

// Policy bounds a retried call.
type Policy struct {
	// Attempts counts the first call. Values below one mean a single call.
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
	// Retryable decides which errors are worth another attempt. Nil retries all.
	Retryable func(error) bool
}

// Option adjusts a Policy.
type Option func(*Policy)

// Attempts sets the total number of calls.
func Attempts(n int) Option {
	return func(p *Policy) { p.Attempts = n }
}

// Delay sets the wait before the second attempt. It doubles after every failure.
func Delay(d time.Duration) Option {
	return func(p *Policy) { p.Delay = d }
}

// MaxDelay caps the wait between attempts.
func MaxDelay(d time.Duration) Option {
	return func(p *Policy) { p.MaxDelay = d }
}

// OnlyIf retries only the errors fn accepts; others are returned as is.
func OnlyIf(fn func(error) bool) Option {
	return func(p *Policy) { p.Retryable = fn }
}

// Do calls fn until it succeeds, fails with an error the policy does not
// retry, runs out of attempts, or ctx is done.
func Do(ctx context.Context, fn func(context.Context) error, opts ...Option) error {
	p := Policy{Attempts: 6, Delay: time.Second, MaxDelay: 30 * time.Second}
	for _, opt := range opts {
		opt(&p)
	}

	// Steps only drives the doubling; once the cap is reached Step keeps returning it.
	backoff := wait.Backoff{
		Duration: p.Delay,
		Factor:   2,
		Cap:      p.MaxDelay,
		Steps:    math.MaxInt32,
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted after %d attempts: %w", attempt-1, errors.Join(err, lastErr))
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt >= p.Attempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, lastErr)
		}

		timer := time.NewTimer(backoff.Step())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("interrupted after %d attempts: %w", attempt, errors.Join(ctx.Err(), lastErr))
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether a Kubernetes API error is transient:
// optimistic-lock conflicts, server or client timeouts, throttling and
// unavailable backends.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return apierrors.IsConflict(err) ||
		apierrors.IsServerTimeout(err) ||
		apierrors.IsTimeout(err) ||
		apierrors.IsTooManyRequests(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsInternalError(err) ||
		errors.Is(err, context.DeadlineExceeded)
}
