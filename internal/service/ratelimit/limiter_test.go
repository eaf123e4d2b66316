package ratelimit

import (
	"errors"
	"testing"
	"time"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *time.Time) {
	l := New(max, window)
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestCheckConsumesQuota(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := l.Check("k")
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		if res.Remaining != 2-i {
			t.Fatalf("call %d remaining=%d", i, res.Remaining)
		}
		if res.Limit != 3 {
			t.Fatalf("unexpected limit %d", res.Limit)
		}
	}

	_, err := l.Check("k")
	var exceeded *ExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected ExceededError, got %v", err)
	}
}

func TestRejectedCallConsumesNothing(t *testing.T) {
	l, now := newTestLimiter(1, time.Minute)

	if _, err := l.Check("k"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := l.Check("k"); err == nil {
			t.Fatalf("expected rejection")
		}
	}

	// Once the only recorded request slides out, the key is clean again.
	*now = now.Add(61 * time.Second)
	if _, err := l.Check("k"); err != nil {
		t.Fatalf("rejections must not extend the window: %v", err)
	}
}

func TestKeysIsolated(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if _, err := l.Check("a"); err != nil {
		t.Fatalf("a: %v", err)
	}
	if _, err := l.Check("b"); err != nil {
		t.Fatalf("b must have its own quota: %v", err)
	}
	if _, err := l.Check("a"); err == nil {
		t.Fatalf("a should be exhausted")
	}
}

func TestSlidingWindowPruning(t *testing.T) {
	l, now := newTestLimiter(2, time.Minute)

	if _, err := l.Check("k"); err != nil {
		t.Fatalf("call 1: %v", err)
	}
	*now = now.Add(40 * time.Second)
	if _, err := l.Check("k"); err != nil {
		t.Fatalf("call 2: %v", err)
	}
	if _, err := l.Check("k"); err == nil {
		t.Fatalf("expected rejection at capacity")
	}

	// 70s after the first call it has slid out; the second is still inside.
	*now = now.Add(30 * time.Second)
	res, err := l.Check("k")
	if err != nil {
		t.Fatalf("expected slot freed by pruning: %v", err)
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining=%d", res.Remaining)
	}
}

func TestResetAtIsNextBoundary(t *testing.T) {
	l, now := newTestLimiter(1, time.Minute)
	*now = time.Date(2026, 1, 2, 12, 0, 25, 0, time.UTC)

	res, err := l.Check("k")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	want := time.Date(2026, 1, 2, 12, 1, 0, 0, time.UTC)
	if !res.ResetAt.Equal(want) {
		t.Fatalf("ResetAt=%v want %v", res.ResetAt, want)
	}

	_, err = l.Check("k")
	var exceeded *ExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected ExceededError, got %v", err)
	}
	if !exceeded.ResetAt.Equal(want) {
		t.Fatalf("error ResetAt=%v want %v", exceeded.ResetAt, want)
	}
	if exceeded.RetryAfter != 35*time.Second {
		t.Fatalf("RetryAfter=%v", exceeded.RetryAfter)
	}
}
