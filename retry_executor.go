package httpadapter

import (
	"context"
	"fmt"
	"time"
)

// Executor runs an operation under a RetryPolicy. The operation is invoked
// at most MaxAttempts times; the policy is consulted only after a failure.
// Backoff waits are timer based suspensions, aborted when the context is
// cancelled.
//
// The executor preserves no state between attempts: each invocation re-runs
// the operation from scratch, so operations must be idempotent from the
// executor's perspective.
type Executor[T any] struct {
	policy RetryPolicy

	// budget, when set, is consulted before every retry. Exhaustion turns
	// a would-be retry into a terminal ErrRetryBudgetExceeded error.
	budget *RetryBudget

	// onBackoff, when set, observes every scheduled wait.
	onBackoff func(attempt int, delay time.Duration)

	// sleep overrides the wait for tests. nil means the timer based wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an Executor for the given policy.
func NewExecutor[T any](policy RetryPolicy) *Executor[T] {
	return &Executor[T]{policy: policy}
}

// Execute invokes op, retrying per the policy. On success the result is
// returned without consulting the policy. A non-retryable error, or a
// retryable error on the final attempt, propagates unchanged.
func (e *Executor[T]) Execute(ctx context.Context, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !e.policy.RetryOn(err) {
			return zero, err
		}
		if attempt >= e.policy.MaxAttempts() {
			return zero, err
		}
		if e.budget != nil && !e.budget.Allow() {
			return zero, &Error{
				Type:      ErrorTypeRetryBudgetExceeded,
				Message:   "retry budget exceeded",
				Cause:     err,
				Attempt:   attempt,
				Timestamp: time.Now(),
			}
		}

		delay := e.policy.Backoff(attempt)
		if e.onBackoff != nil {
			e.onBackoff(attempt, delay)
		}
		if werr := e.wait(ctx, delay); werr != nil {
			return zero, werr
		}
	}
}

// wait suspends until the delay elapses or the context is done.
func (e *Executor[T]) wait(ctx context.Context, d time.Duration) error {
	if e.sleep != nil {
		return e.sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("httpadapter: backoff interrupted: %w", ctx.Err())
	}
}
