// Package retry decorates remote calls with a bounded, fixed-delay retry.
package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	// DefaultMaxRetries is the number of re-attempts after the first call.
	DefaultMaxRetries = 3
	// DefaultDelay is the fixed pause between attempts.
	DefaultDelay = 1 * time.Second
)

// Predicate reports whether a failed attempt may be retried.
type Predicate func(error) bool

// Policy describes a fixed-delay retry without jitter or backoff growth.
type Policy struct {
	MaxRetries uint64
	Delay      time.Duration
	// Retryable selects the errors worth another attempt. A nil predicate
	// retries nothing.
	Retryable Predicate
	// OnRetry, when set, is invoked each time a retry is scheduled with the
	// 1-based number of the attempt that just failed.
	OnRetry func(attempt uint64, err error)
}

// NewPolicy returns the default policy (3 retries, 1s apart) for retryable.
func NewPolicy(retryable Predicate) Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Delay:      DefaultDelay,
		Retryable:  retryable,
	}
}

// WithOnRetry returns a copy of p with hook installed.
func (p Policy) WithOnRetry(hook func(attempt uint64, err error)) Policy {
	p.OnRetry = hook
	return p
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// retries are exhausted. The last error is returned unchanged. Cancelling ctx
// aborts a pending delay and returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		result  T
		attempt uint64
		lastErr error
	)

	delay := p.Delay
	if delay <= 0 {
		// go-retry rejects non-positive constant backoffs.
		delay = time.Nanosecond
	}
	limited := goretry.WithMaxRetries(p.MaxRetries, goretry.NewConstant(delay))
	backoff := goretry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := limited.Next()
		if !stop && p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}
		return next, stop
	})

	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		value, err := fn(ctx)
		if err != nil {
			lastErr = err
			if p.Retryable != nil && p.Retryable(err) {
				return goretry.RetryableError(err)
			}
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
