package resilience

import (
	"context"
	"log/slog"
	"time"
)

// Call wraps fn with a circuit breaker, a per-call timeout, and bounded
// retry with exponential backoff. It mirrors the teacher's
// WithTimeout/WithRetry/WithCircuitBreaker middleware chain collapsed into
// a single helper for request/response upstream calls.
func Call[T any](ctx context.Context, upstream string, cb *CircuitBreaker, timeout time.Duration, maxRetries int, baseBackoff time.Duration, logger *slog.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if !cb.allow() {
		return zero, &ErrCircuitOpen{Upstream: upstream}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		result, err := fn(callCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			cb.recordSuccess()
			return result, nil
		}
		lastErr = err
		cb.recordFailure()

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if _, ok := err.(*ErrCircuitOpen); ok {
			return zero, err
		}
		if attempt < maxRetries {
			wait := baseBackoff * (1 << uint(attempt))
			if logger != nil {
				logger.WarnContext(ctx, "retrying upstream call",
					"upstream", upstream, "attempt", attempt+1, "max_retries", maxRetries,
					"backoff_ms", wait.Milliseconds(), "error", err)
			}
			select {
			case <-ctx.Done():
				return zero, lastErr
			case <-time.After(wait):
			}
		}
	}
	return zero, lastErr
}
