package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var (
	errRetriable = errors.New("retriable")
	errTerminal  = errors.New("terminal")
)

func isRetriable(err error) bool {
	return errors.Is(err, errRetriable)
}

func fastPolicy() Policy {
	return Policy{MaxRetries: 3, Delay: 5 * time.Millisecond, Retryable: isRetriable}
}

func TestNewPolicyDefaults(t *testing.T) {
	p := NewPolicy(isRetriable)
	if p.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want 3", p.MaxRetries)
	}
	if p.Delay != time.Second {
		t.Fatalf("Delay = %s, want 1s", p.Delay)
	}
	if p.Retryable == nil {
		t.Fatalf("Retryable should be set")
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("Do() = %q, %v", got, err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errRetriable
		}
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("Do() = %d, %v", got, err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustionReturnsOriginalError(t *testing.T) {
	var last error
	calls := 0
	var retried []uint64

	p := fastPolicy().WithOnRetry(func(attempt uint64, err error) {
		retried = append(retried, attempt)
	})
	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		last = fmt.Errorf("attempt %d: %w", calls, errRetriable)
		return 0, last
	})
	if calls != 4 {
		t.Fatalf("calls = %d, want 4 (1 + 3 retries)", calls)
	}
	if err != last {
		t.Fatalf("Do() error = %v, want the last attempt's error unchanged", err)
	}
	if len(retried) != 3 || retried[0] != 1 || retried[2] != 3 {
		t.Fatalf("OnRetry attempts = %v, want [1 2 3]", retried)
	}
}

func TestDoDoesNotRetryTerminalErrors(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errTerminal
	})
	if !errors.Is(err, errTerminal) {
		t.Fatalf("Do() error = %v, want terminal", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoNilPredicateNeverRetries(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: 3, Delay: time.Millisecond}
	_, _ = Do(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		return 0, errRetriable
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoZeroRetries(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: 0, Delay: time.Millisecond, Retryable: isRetriable}
	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		return 0, errRetriable
	})
	if !errors.Is(err, errRetriable) || calls != 1 {
		t.Fatalf("Do() = %v after %d calls, want retriable after 1", err, calls)
	}
}

func TestDoFixedDelay(t *testing.T) {
	p := Policy{MaxRetries: 2, Delay: 40 * time.Millisecond, Retryable: isRetriable}
	var stamps []time.Time
	_, _ = Do(context.Background(), p, func(ctx context.Context) (int, error) {
		stamps = append(stamps, time.Now())
		return 0, errRetriable
	})
	if len(stamps) != 3 {
		t.Fatalf("attempts = %d, want 3", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 40*time.Millisecond {
			t.Fatalf("gap %d = %s, want >= 40ms", i, gap)
		}
	}
}

func TestDoCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxRetries: 3, Delay: time.Hour, Retryable: isRetriable}

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, func(ctx context.Context) (int, error) {
			calls++
			return 0, errRetriable
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Do() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Do() did not return after cancellation")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Do(ctx, fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}
