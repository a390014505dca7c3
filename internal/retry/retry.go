// Package retry provides a bounded exponential backoff helper built on cenkalti/backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/logger"
)

// Policy bounds a retry loop
type Policy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries uint64
	// InitialInterval is the first delay, doubled on every retry
	InitialInterval time.Duration
	// MaxInterval caps a single delay
	MaxInterval time.Duration
	// AttemptTimeout bounds each attempt; zero means no per-attempt timeout
	AttemptTimeout time.Duration
}

// DefaultPolicy is three retries doubling from one second, ten seconds per attempt
var DefaultPolicy = Policy{
	MaxRetries:      3,
	InitialInterval: time.Second,
	MaxInterval:     8 * time.Second,
	AttemptTimeout:  10 * time.Second,
}

// Permanent marks err as non-retryable
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, the retries are
// exhausted or ctx is done. The last error is returned.
func Do(ctx context.Context, name string, p Policy, op func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.2

	attempts := 0
	operation := func() error {
		attempts++
		attemptCtx := ctx
		if p.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
			defer cancel()
		}
		return op(attemptCtx)
	}

	notify := func(err error, d time.Duration) {
		logger.WarnCtx(ctx, "Retrying operation",
			zap.String("operation", name),
			zap.Int("attempt", attempts),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
	}
	return nil
}
