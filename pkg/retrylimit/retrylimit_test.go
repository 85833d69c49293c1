package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string   { return "status" }
func (s statusErr) StatusCode() int { return int(s) }

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialDelay:   time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		RateLimitDelay: time.Millisecond,
		Multiplier:     2,
	}
}

func TestWithRetryConfig(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"first try", 0, boom, 3, 1, false},
		{"recovers", 2, boom, 3, 3, false},
		{"exhausted", 5, boom, 3, 3, true},
		{"fatal stops", 5, Fatal(boom), 3, 1, true},
		{"wrapped fatal stops", 5, errors.Join(Fatal(boom)), 3, 1, true},
		{"rate limited recovers", 1, statusErr(429), 3, 2, false},
		{"server error exhausted", 9, statusErr(503), 2, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetryConfig(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}, nil, fastConfig(tt.attempts))

			if calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWithRetryConfigKeepsLastError(t *testing.T) {
	boom := errors.New("boom")
	err := WithRetryConfig(context.Background(), func() error { return boom }, nil, fastConfig(2))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped boom, got %v", err)
	}
}

func TestWithRetryConfigCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetryConfig(ctx, func() error { calls++; return nil }, nil, fastConfig(3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls, got %d", calls)
	}
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)

	lim.RateLimited()
	if got := lim.CurrentLimit(); got != 2 {
		t.Errorf("expected 2 rps after one failure, got %v", got)
	}
	lim.RateLimited()
	lim.RateLimited()
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("expected floor of 1 rps, got %v", got)
	}
}

func TestFatalNil(t *testing.T) {
	if Fatal(nil) != nil {
		t.Error("Fatal(nil) must be nil")
	}
}
