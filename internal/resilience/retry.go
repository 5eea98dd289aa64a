package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Backoff caps per error category.
const (
	rateLimitedCap = 60 * time.Second
	providerCap    = 30 * time.Second
	timeoutCap     = 30 * time.Second
	timeoutStep    = 2 * time.Second
	baseBackoff    = 500 * time.Millisecond
)

// RetryDelay is the single source of truth for backoff timing. attempt is
// zero-based (delay before the first retry uses attempt 0). Validation and
// cost-limit errors return 0 and must not be retried at all.
func RetryDelay(kind Kind, rateLimited bool, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	switch kind {
	case KindProvider:
		d := baseBackoff << uint(attempt)
		if rateLimited {
			// Throttled calls start at 1s and get a higher ceiling.
			d = time.Second << uint(attempt)
			if d > rateLimitedCap {
				d = rateLimitedCap
			}
			return d
		}
		if d > providerCap {
			d = providerCap
		}
		return d
	case KindTimeout:
		// Linear: the deadline itself already bounded the wait.
		d := time.Duration(attempt+1) * timeoutStep
		if d > timeoutCap {
			d = timeoutCap
		}
		return d
	default:
		return 0
	}
}

// DelayFor classifies err and returns its backoff delay.
func DelayFor(err error, attempt int) time.Duration {
	return RetryDelay(KindOf(err), IsRateLimited(err), attempt)
}

// Do executes fn up to maxAttempts times, sleeping per the taxonomy's
// backoff policy between retryable failures. Context cancellation stops
// retries immediately.
func Do(ctx context.Context, maxAttempts int, operation string, fn func(ctx context.Context) error) error {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return lastErr
		}
		if !Retryable(lastErr) {
			return lastErr
		}
		if attempt >= maxAttempts-1 {
			break
		}

		delay := DelayFor(lastErr, attempt)
		zap.L().Warn("retrying operation",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

// DoVal is Do for operations that return a value.
func DoVal[T any](ctx context.Context, maxAttempts int, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, maxAttempts, operation, func(ctx context.Context) error {
		var innerErr error
		out, innerErr = fn(ctx)
		return innerErr
	})
	return out, err
}
