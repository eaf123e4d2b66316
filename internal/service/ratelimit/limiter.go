package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Result describes the caller's quota after a successful check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// ExceededError is returned when a caller is over quota. The rejected call
// does not consume quota.
type ExceededError struct {
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// Limiter counts requests per key over a trailing window. Accounting is
// sliding-window-by-pruning; the advertised ResetAt is the next fixed
// window boundary aligned to the window size. Callers depend on that
// boundary for X-RateLimit-Reset, so the two models are deliberately mixed.
type Limiter struct {
	mu          sync.Mutex
	m           map[string][]time.Time
	maxRequests int
	window      time.Duration

	now func() time.Time
}

// New creates a limiter allowing maxRequests per key within window.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		m:           make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Check records one request for key, or fails with *ExceededError when the
// key already has maxRequests recorded inside the trailing window.
func (l *Limiter) Check(key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.m[key][:0]
	for _, ts := range l.m[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.m[key] = kept

	resetAt := l.nextBoundary(now)
	if len(kept) >= l.maxRequests {
		return Result{}, &ExceededError{
			RetryAfter: resetAt.Sub(now),
			ResetAt:    resetAt,
		}
	}

	l.m[key] = append(kept, now)
	return Result{
		Limit:     l.maxRequests,
		Remaining: l.maxRequests - len(l.m[key]),
		ResetAt:   resetAt,
	}, nil
}

// nextBoundary returns the start of the next fixed window aligned to the
// window size.
func (l *Limiter) nextBoundary(now time.Time) time.Time {
	return now.Truncate(l.window).Add(l.window)
}
