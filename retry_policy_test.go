package httpadapter

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultRetryPolicyDefaults(t *testing.T) {
	policy := NewDefaultRetryPolicy()

	if policy.MaxAttempts() != 3 {
		t.Errorf("MaxAttempts() = %d, want 3", policy.MaxAttempts())
	}
}

func TestDefaultRetryPolicyBackoffWindows(t *testing.T) {
	policy := NewDefaultRetryPolicy()

	cases := []struct {
		attempt  int
		min, max time.Duration
	}{
		{1, 200 * time.Millisecond, 250 * time.Millisecond},
		{2, 400 * time.Millisecond, 450 * time.Millisecond},
		{3, 800 * time.Millisecond, 850 * time.Millisecond},
	}

	for _, c := range cases {
		for i := 0; i < 200; i++ {
			d := policy.Backoff(c.attempt)
			if d < c.min || d >= c.max {
				t.Fatalf("Backoff(%d) = %v, want [%v, %v)", c.attempt, d, c.min, c.max)
			}
		}
	}
}

func TestDefaultRetryPolicyRetryOn(t *testing.T) {
	policy := NewDefaultRetryPolicy()

	retryable := []error{
		&Error{Type: ErrorTypeClient, StatusCode: 429},
		&Error{Type: ErrorTypeServer, StatusCode: 500},
		&Error{Type: ErrorTypeServer, StatusCode: 502},
		&Error{Type: ErrorTypeServer, StatusCode: 503},
		&Error{Type: ErrorTypeServer, StatusCode: 504},
		&Error{Type: ErrorTypeTimeout, Code: CodeConnAborted},
	}
	for _, err := range retryable {
		if !policy.RetryOn(err) {
			t.Errorf("RetryOn(%v) = false, want true", err)
		}
	}

	notRetryable := []error{
		nil,
		&Error{Type: ErrorTypeClient, StatusCode: 400},
		&Error{Type: ErrorTypeClient, StatusCode: 401},
		&Error{Type: ErrorTypeClient, StatusCode: 403},
		&Error{Type: ErrorTypeClient, StatusCode: 404},
		&Error{Type: ErrorTypeNetwork, Code: "ECONNREFUSED"},
		errors.New("generic error with no recognizable shape"),
	}
	for _, err := range notRetryable {
		if policy.RetryOn(err) {
			t.Errorf("RetryOn(%v) = true, want false", err)
		}
	}
}

func TestRetryOnUnwrapsCause(t *testing.T) {
	policy := NewDefaultRetryPolicy()

	wrapped := &Error{
		Type:    ErrorTypeRetryBudgetExceeded,
		Message: "retry budget exceeded",
		Cause:   &Error{Type: ErrorTypeServer, StatusCode: 503},
	}
	// The outer error carries no status; errors.As finds the outer *Error
	// first, so the budget error itself is not retryable.
	if policy.RetryOn(wrapped) {
		t.Error("RetryOn(budget error) = true, want false")
	}
}

func TestNewRetryPolicyWithStrategy(t *testing.T) {
	policy := NewRetryPolicyWithStrategy(5, 100*time.Millisecond, 2*time.Second, 2.0, 0, DecorrelatedJitter)

	if policy.MaxAttempts() != 5 {
		t.Errorf("MaxAttempts() = %d, want 5", policy.MaxAttempts())
	}
	for i := 0; i < 100; i++ {
		d := policy.Backoff(2)
		if d < 100*time.Millisecond || d > 2*time.Second {
			t.Fatalf("Backoff(2) = %v, want within [100ms, 2s]", d)
		}
	}
}

func TestRetryBudgetAllow(t *testing.T) {
	budget := NewRetryBudget(2, time.Hour)

	if !budget.Allow() {
		t.Error("first retry denied")
	}
	if !budget.Allow() {
		t.Error("second retry denied")
	}
	if budget.Allow() {
		t.Error("third retry allowed beyond budget")
	}

	current, max, _ := budget.Stats()
	if max != 2 {
		t.Errorf("max = %d, want 2", max)
	}
	if current < 2 {
		t.Errorf("current = %d, want >= 2", current)
	}
}

func TestRetryBudgetWindowReset(t *testing.T) {
	budget := NewRetryBudget(1, 20*time.Millisecond)

	if !budget.Allow() {
		t.Fatal("first retry denied")
	}
	if budget.Allow() {
		t.Fatal("second retry allowed within window")
	}

	time.Sleep(25 * time.Millisecond)
	if !budget.Allow() {
		t.Error("retry denied after window reset")
	}
}
