// Package resilience provides a per-upstream circuit breaker and retry
// helper, generalized from a HandlerMiddleware chain into a pair of
// wrappers any client can apply around a single upstream call.
package resilience

import (
	"sync"
	"time"
)

// breakerState represents the circuit breaker state.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// CircuitBreaker trips after a run of consecutive failures and rejects
// calls for a cooldown window before probing recovery. Thread-safe.
//
// Its state transitions are only ever driven through Call: there is no
// exported Allow/RecordSuccess/RecordFailure surface for a caller to poke
// at directly, so a CircuitBreaker can't drift out of sync with the calls
// it's guarding.
type CircuitBreaker struct {
	mu           sync.Mutex
	state        breakerState
	failures     int
	successes    int
	threshold    int
	resetTimeout time.Duration
	halfOpenMax  int
	lastFailure  time.Time
	now          func() time.Time
}

// BreakerOption configures a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithBreakerThreshold sets the failure count that trips the breaker open.
func WithBreakerThreshold(n int) BreakerOption {
	return func(cb *CircuitBreaker) { cb.threshold = n }
}

// WithBreakerResetTimeout sets how long the breaker stays open before
// moving to half-open.
func WithBreakerResetTimeout(d time.Duration) BreakerOption {
	return func(cb *CircuitBreaker) { cb.resetTimeout = d }
}

// WithBreakerClock overrides the clock (for tests).
func WithBreakerClock(fn func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) { cb.now = fn }
}

// NewCircuitBreaker creates a breaker with sensible defaults: 5 failures
// to open, 30s reset timeout, 2 successes in half-open to close.
func NewCircuitBreaker(opts ...BreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:        breakerClosed,
		threshold:    5,
		resetTimeout: 30 * time.Second,
		halfOpenMax:  2,
		now:          time.Now,
	}
	for _, o := range opts {
		o(cb)
	}
	return cb
}

// allow reports whether a call should proceed. Only Call (and this
// package's own tests) touch breaker state directly.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeTransition()
	return cb.state != breakerOpen
}

// recordSuccess marks a call as successful.
func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case breakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.halfOpenMax {
			cb.state = breakerClosed
			cb.failures = 0
			cb.successes = 0
		}
	case breakerClosed:
		cb.failures = 0
	}
}

// recordFailure marks a call as failed.
func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.lastFailure = cb.now()
	switch cb.state {
	case breakerClosed:
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.state = breakerOpen
		}
	case breakerHalfOpen:
		cb.state = breakerOpen
		cb.successes = 0
	}
}

func (cb *CircuitBreaker) maybeTransition() {
	if cb.state == breakerOpen && cb.now().Sub(cb.lastFailure) >= cb.resetTimeout {
		cb.state = breakerHalfOpen
		cb.successes = 0
	}
}

// ErrCircuitOpen is returned by Call when the breaker rejects the call.
type ErrCircuitOpen struct{ Upstream string }

func (e *ErrCircuitOpen) Error() string { return "circuit open: " + e.Upstream }
