// Package retrylimit retries operations with exponential backoff behind an
// optional rate limiter that slows down when the remote side pushes back.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.WithRetryMax(ctx, doRequest, lim, 5)
//
// Errors carrying an HTTP status (see HTTPError) are classified: 429 slows the
// limiter and retries after RateLimitDelay, 5xx slows it and backs off.
// Wrap an error with Fatal to stop retrying.
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// quietPeriod is how long after the last failure the limiter stays at its
// reduced rate.
const quietPeriod = 10 * time.Second

// AdaptiveLimiter is a token bucket whose rate grows by a step on success
// and shrinks by a factor on failure, within [min, max].
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	min, max    rate.Limit
	stepUp      rate.Limit
	stepDown    float64
	lastFailure time.Time
}

// NewAdaptiveLimiter starts at initial requests per second. Rates below one
// request per second are raised to one.
func NewAdaptiveLimiter(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	initial, min = max1(initial), max1(min)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burst(initial)),
		min:      min,
		max:      max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

func max1(l rate.Limit) rate.Limit {
	if l < 1 {
		return 1
	}
	return l
}

func burst(l rate.Limit) int {
	if l < 1 {
		return 1
	}
	return int(l)
}

func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless a failure happened recently.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastFailure) > quietPeriod {
		a.set(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastFailure = time.Now()
	a.set(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) set(l rate.Limit) {
	l = min(max(l, a.min), a.max)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burst(l))
	}
}

// HTTPError is implemented by errors that carry an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// FatalError stops WithRetry immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as non-retryable.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// ErrorClassifier reports whether err should slow the limiter down.
type ErrorClassifier func(error) bool

// DefaultClassifier slows down on 429 and 5xx.
func DefaultClassifier(err error) bool {
	code := statusCode(err)
	return code == http.StatusTooManyRequests || code >= 500 && code < 600
}

func statusCode(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return 0
}

type RetryConfig struct {
	// MaxAttempts counts the first call; 0 means 100.
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration
	// Multiplier grows the delay after each failure; values below 1 keep
	// it constant.
	Multiplier      float64
	Jitter          bool
	ErrorClassifier ErrorClassifier
	OnRetry         func(attempt int, err error)
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     100,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		RateLimitDelay:  100 * time.Millisecond,
		Multiplier:      2,
		Jitter:          true,
		ErrorClassifier: DefaultClassifier,
	}
}

// WithRetry runs fn with the default configuration.
func WithRetry(ctx context.Context, fn func() error, lim *AdaptiveLimiter) error {
	return WithRetryConfig(ctx, fn, lim, DefaultRetryConfig())
}

// WithRetryMax runs fn with the default configuration and at most
// maxAttempts calls.
func WithRetryMax(ctx context.Context, fn func() error, lim *AdaptiveLimiter, maxAttempts int) error {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = maxAttempts
	return WithRetryConfig(ctx, fn, lim, cfg)
}

// WithRetryConfig calls fn until it succeeds, returns a FatalError, ctx is
// done or cfg.MaxAttempts calls were made. lim may be nil.
func WithRetryConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg RetryConfig) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}
	if cfg.ErrorClassifier == nil {
		cfg.ErrorClassifier = DefaultClassifier
	}
	delay := cfg.InitialDelay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("Retry succeeded")
			}
			return nil
		}
		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
		if lim != nil && cfg.ErrorClassifier(err) {
			lim.RateLimited()
		}
		if attempt >= cfg.MaxAttempts {
			return fmt.Errorf("max attempts (%d) exceeded: %w", cfg.MaxAttempts, err)
		}

		wait := cfg.RateLimitDelay
		if statusCode(err) != http.StatusTooManyRequests {
			wait = delay
			if cfg.Jitter {
				wait = jitter(wait)
			}
			delay = next(delay, cfg)
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("sleep", wait).Msg("Retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func next(d time.Duration, cfg RetryConfig) time.Duration {
	if cfg.Multiplier > 1 {
		d = time.Duration(float64(d) * cfg.Multiplier)
	}
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}

// jitter adds up to a quarter of d.
func jitter(d time.Duration) time.Duration {
	if d < 4 {
		return d
	}
	return d + rand.N(d/4)
}
