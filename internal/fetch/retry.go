package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Backoff describes a retry policy with exponential delays.
type Backoff struct {
	Attempts  int           // Total attempts (default 3)
	BaseDelay time.Duration // Delay before the second attempt, doubled afterwards (default 1s)

	// delayFunc overrides the computed delay, used by tests to avoid sleeping.
	delayFunc func(attempt int) time.Duration
}

// DefaultBackoff is the pipeline policy: 3 attempts, exponential from 1 second.
func DefaultBackoff() Backoff {
	return Backoff{Attempts: 3, BaseDelay: time.Second}
}

func (b Backoff) delay(attempt int) time.Duration {
	if b.delayFunc != nil {
		return b.delayFunc(attempt)
	}
	d := b.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// Do runs op under the backoff policy, returning the first success or the
// last error once attempts are exhausted.
//
// Context cancellation is respected both between attempts and during the
// backoff sleep; a cancelled context never triggers another attempt.
func Do[T any](ctx context.Context, b Backoff, logger *log.Logger, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if b.Attempts <= 0 {
		b.Attempts = 3
	}
	if b.BaseDelay <= 0 {
		b.BaseDelay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= b.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("cancelled: %w", err)
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if logger != nil {
			logger.Warn("attempt failed", "attempt", attempt, "error", err)
		}

		if attempt < b.Attempts {
			select {
			case <-time.After(b.delay(attempt)):
			case <-ctx.Done():
				return zero, fmt.Errorf("cancelled during backoff: %w", ctx.Err())
			}
		}
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", b.Attempts, lastErr)
}
