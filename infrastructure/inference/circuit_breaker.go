package inference

import (
	"sync"
	"sync/atomic"
	"time"
)

// CircuitBreaker stops calls to the sidecar after repeated failures
type CircuitBreaker struct {
	failures     int32
	threshold    int32
	resetTimeout time.Duration
	lastFailure  time.Time
	mu           sync.RWMutex
	now          func() time.Time
}

func NewCircuitBreaker(threshold int32, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

// IsOpen returns true while calls should be refused. Once resetTimeout has
// passed since the last failure one call is let through (half-open).
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if atomic.LoadInt32(&cb.failures) < cb.threshold {
		return false
	}
	return cb.now().Sub(cb.lastFailure) <= cb.resetTimeout
}

func (cb *CircuitBreaker) RecordSuccess() {
	atomic.StoreInt32(&cb.failures, 0)
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	atomic.AddInt32(&cb.failures, 1)
	cb.lastFailure = cb.now()
}

func (cb *CircuitBreaker) Failures() int32 {
	return atomic.LoadInt32(&cb.failures)
}
