package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
}

// DefaultConfig is used for connecting to backing services at startup.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 60 * time.Second,
	}
}

// SnapshotConfig is the shorter policy used by the write-behind persister,
// which must give up quickly and retry on the next mutation.
func SnapshotConfig() Config {
	return Config{
		MaxAttempts:     4,
		InitialDelay:    50 * time.Millisecond,
		MaxDelay:        time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 5 * time.Second,
	}
}

// OnRetry is called after a failed attempt that will be retried.
type OnRetry func(attempt int, err error, nextDelay time.Duration)

// Do runs fn until it succeeds, attempts are exhausted or ctx ends.
// name prefixes returned errors; onRetry may be nil.
func Do(ctx context.Context, cfg Config, name string, fn func(ctx context.Context) error, onRetry OnRetry) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return aborted(name, attempt-1, err, lastErr)
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if onRetry != nil {
			onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return aborted(name, attempt, ctx.Err(), lastErr)
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%s: max retry attempts (%d) exceeded: %w", name, cfg.MaxAttempts, lastErr)
}

func aborted(name string, attempts int, ctxErr, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("%s: retry aborted after %d attempts: %w (last error: %v)", name, attempts, ctxErr, lastErr)
	}
	return fmt.Errorf("%s: retry aborted: %w", name, ctxErr)
}
