// Package retry provides a bounded exponential-backoff executor for remote calls.
//
// Remote spreadsheet and generation calls are subject to rate limits and
// transient network failures. Every failure is treated as transient and
// retried identically: the wrapped operations are idempotent reads or
// single-cell writes, and the attempt budget is small enough that a
// low-frequency scheduled job is never blocked for long.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Default backoff parameters.
const (
	DefaultMaxAttempts  = 5
	DefaultInitialDelay = 700 * time.Millisecond
	DefaultMaxDelay     = 30 * time.Second
	DefaultMultiplier   = 1.8
	DefaultJitter       = 250 * time.Millisecond
)

// Config configures backoff behavior.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the exponential growth of the wait interval.
	MaxDelay time.Duration
	// Multiplier is the per-attempt growth factor of the wait interval.
	Multiplier float64
	// Jitter is the upper bound of the random delta added to each wait.
	Jitter time.Duration

	// Sleep, when set, replaces the wait between attempts. Tests use it to
	// observe delays without real sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns the backoff configuration used for spreadsheet and
// generation calls.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		Multiplier:   DefaultMultiplier,
		Jitter:       DefaultJitter,
	}
}

func (c *Config) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultInitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.Multiplier <= 1 {
		c.Multiplier = DefaultMultiplier
	}
	if c.Sleep == nil {
		c.Sleep = wait
	}
}

// Do invokes fn until it succeeds or the attempt budget is exhausted, waiting
// an exponentially growing interval plus random jitter between attempts. The
// final failure is returned unchanged so callers can still match on typed
// errors. Waits are cancelled by the context.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	cfg.applyDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry aborted: %w", err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < cfg.MaxAttempts {
			if err := cfg.Sleep(ctx, cfg.delay(attempt)); err != nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
		}
	}

	return lastErr
}

// DoValue is the value-returning variant of Do.
func DoValue[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var callErr error
		result, callErr = fn()
		return callErr
	})
	return result, err
}

// delay computes the wait after the given 1-based attempt.
func (c *Config) delay(attempt int) time.Duration {
	d := time.Duration(float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1)))
	if d > c.MaxDelay || d <= 0 {
		d = c.MaxDelay
	}
	if c.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(c.Jitter)))
	}
	return d
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
