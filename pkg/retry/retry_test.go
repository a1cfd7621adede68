package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int

	err := Do(context.Background(), fastConfig(5), "snapshot", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, func(attempt int, err error, _ time.Duration) {
		retried = append(retried, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("still down")
	calls := 0

	err := Do(context.Background(), fastConfig(3), "postgres", func(context.Context) error {
		calls++
		return sentinel
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "postgres: max retry attempts (3) exceeded")
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(3), "redis", func(context.Context) error {
		calls++
		return nil
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{}, "once", func(context.Context) error {
		calls++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
