package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlm/content-bot/internal/retry"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	var delays []time.Duration
	cfg := retry.DefaultConfig()
	cfg.Sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	calls := 0
	err := retry.Do(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, delays, 2, "should sleep exactly twice")
	assert.Greater(t, delays[1], delays[0], "waits must grow between attempts")
}

func TestDoReturnsFinalErrorUnchanged(t *testing.T) {
	sentinel := errors.New("boom")
	cfg := retry.Config{
		MaxAttempts: 3,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}

	calls := 0
	err := retry.Do(context.Background(), cfg, func() error {
		calls++
		return sentinel
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, sentinel)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		calls++
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls, "cancelled context must prevent the first attempt")
}

func TestDoCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := retry.DefaultConfig()
	cfg.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := retry.Do(ctx, cfg, func() error { return errors.New("transient") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoValueReturnsResult(t *testing.T) {
	cfg := retry.Config{
		MaxAttempts: 4,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}

	calls := 0
	got, err := retry.DoValue(context.Background(), cfg, func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "value", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.Equal(t, 2, calls)
}

func TestDefaultConfig(t *testing.T) {
	cfg := retry.DefaultConfig()

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 700*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 1.8, cfg.Multiplier)
	assert.Positive(t, cfg.Jitter)
}
