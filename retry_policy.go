package httpadapter

import (
	"sync/atomic"
	"time"

	internalbackoff "github.com/yildizpay/http-adapter/internal/backoff"
)

// RetryPolicy decides whether a failed dispatch is retried and how long to
// wait before the next attempt. Implementations must be stateless across
// invocations and safe for concurrent use. Attempt numbering starts at 1.
type RetryPolicy interface {
	// MaxAttempts is the total number of dispatch attempts, including the
	// first. Must be positive.
	MaxAttempts() int

	// RetryOn reports whether the error is worth retrying. Pure.
	RetryOn(err error) bool

	// Backoff returns the delay inserted after failed attempt n (n >= 1).
	Backoff(attempt int) time.Duration
}

// defaultRetryStatusCodes is the conservative allow-list of HTTP statuses
// the default policy retries. Unknown error shapes are never retried.
var defaultRetryStatusCodes = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// DefaultRetryPolicy retries the status allow-list and aborted connections
// with exponential backoff plus a bounded jitter window: attempt n waits
// base*2^n plus a uniform duration in [0, jitterWindow).
type DefaultRetryPolicy struct {
	maxAttempts  int
	base         time.Duration
	maxBackoff   time.Duration
	multiplier   float64
	jitterWindow time.Duration
	strategy     internalbackoff.Strategy
}

// NewDefaultRetryPolicy creates the default policy: 3 attempts, 100ms base,
// multiplier 2, jitter window 50ms. Attempt 1 waits [200ms, 250ms),
// attempt 2 [400ms, 450ms), attempt 3 [800ms, 850ms).
func NewDefaultRetryPolicy() *DefaultRetryPolicy {
	return NewRetryPolicy(3, 100*time.Millisecond, 10*time.Second, 2.0, 50*time.Millisecond)
}

// NewRetryPolicy creates a policy with explicit backoff parameters.
func NewRetryPolicy(maxAttempts int, base, maxBackoff time.Duration, multiplier float64, jitterWindow time.Duration) *DefaultRetryPolicy {
	return &DefaultRetryPolicy{
		maxAttempts:  maxAttempts,
		base:         base,
		maxBackoff:   maxBackoff,
		multiplier:   multiplier,
		jitterWindow: jitterWindow,
		strategy:     internalbackoff.ExponentialJitterStrategy{},
	}
}

// NewRetryPolicyWithStrategy creates a policy using a specific backoff
// strategy from internal/backoff semantics, selected by name.
func NewRetryPolicyWithStrategy(maxAttempts int, base, maxBackoff time.Duration, multiplier float64, jitterWindow time.Duration, strategy BackoffStrategy) *DefaultRetryPolicy {
	p := NewRetryPolicy(maxAttempts, base, maxBackoff, multiplier, jitterWindow)
	switch strategy {
	case DecorrelatedJitter:
		p.strategy = internalbackoff.DecorrelatedJitterStrategy{}
	default:
		p.strategy = internalbackoff.ExponentialJitterStrategy{}
	}
	return p
}

// BackoffStrategy selects the backoff calculation algorithm.
type BackoffStrategy int

// Available backoff strategies.
const (
	ExponentialJitter BackoffStrategy = iota
	DecorrelatedJitter
)

// MaxAttempts implements RetryPolicy.
func (p *DefaultRetryPolicy) MaxAttempts() int { return p.maxAttempts }

// RetryOn implements RetryPolicy. It is an allow-list: true only for errors
// carrying a status in {429, 500, 502, 503, 504} or the connection-aborted
// transport code. Generic errors without a recognizable shape are never
// retried.
func (p *DefaultRetryPolicy) RetryOn(err error) bool {
	if err == nil {
		return false
	}
	if status, ok := statusCodeOf(err); ok {
		return defaultRetryStatusCodes[status]
	}
	if code, ok := transportCodeOf(err); ok {
		return code == CodeConnAborted
	}
	return false
}

// Backoff implements RetryPolicy.
func (p *DefaultRetryPolicy) Backoff(attempt int) time.Duration {
	return p.strategy.Calculate(attempt, p.base, p.maxBackoff, p.multiplier, p.jitterWindow)
}

// RetryBudget caps the total number of retries allowed across an adapter
// within a sliding window, protecting upstreams from retry storms. It is
// lock-free and safe for concurrent use.
type RetryBudget struct {
	maxRetries  int64
	perWindow   time.Duration
	current     int64
	windowStart int64
}

// NewRetryBudget creates a budget allowing maxRetries retries per window.
func NewRetryBudget(maxRetries int, perWindow time.Duration) *RetryBudget {
	return &RetryBudget{
		maxRetries:  int64(maxRetries),
		perWindow:   perWindow,
		windowStart: time.Now().UnixNano(),
	}
}

// Allow reports whether a retry is permitted under the current budget and
// consumes one slot when it is.
func (rb *RetryBudget) Allow() bool {
	now := time.Now().UnixNano()
	windowStart := atomic.LoadInt64(&rb.windowStart)

	if now-windowStart >= int64(rb.perWindow) {
		if atomic.CompareAndSwapInt64(&rb.windowStart, windowStart, now) {
			atomic.StoreInt64(&rb.current, 0)
		}
	}

	if atomic.LoadInt64(&rb.current) >= rb.maxRetries {
		return false
	}

	return atomic.AddInt64(&rb.current, 1) <= rb.maxRetries
}

// Stats returns the current budget consumption and window start.
func (rb *RetryBudget) Stats() (current, max int64, windowStart time.Time) {
	return atomic.LoadInt64(&rb.current),
		rb.maxRetries,
		time.Unix(0, atomic.LoadInt64(&rb.windowStart))
}
