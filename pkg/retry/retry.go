// Package retry provides a small bounded retry-with-backoff loop shared by
// the market data fetcher and the webhook delivery engine.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config controls the retry loop. Delay before attempt n+1 is
// BaseDelay * Multiplier^(n-1); no delay follows the final attempt.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// PermanentError wraps an error that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as terminal so Do returns it without further attempts.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// Do runs fn up to cfg.MaxAttempts times, sleeping with exponential backoff
// between failed attempts. It returns nil on the first success, the wrapped
// error as soon as fn reports a permanent failure, or the last error once
// attempts are exhausted. The backoff sleep honors ctx cancellation.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context, attempt int) error) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := cfg.BaseDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}

		if attempt == attempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if cfg.Multiplier > 0 {
			delay = time.Duration(float64(delay) * cfg.Multiplier)
		}
	}
	return err
}
