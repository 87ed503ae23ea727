package httpadapter

import (
	"errors"
	"fmt"
	"time"
)

// Error type classifiers.
const (
	ErrorTypeNetwork             = "Network"
	ErrorTypeTimeout             = "Timeout"
	ErrorTypeServer              = "Server"
	ErrorTypeClient              = "Client"
	ErrorTypeRateLimit           = "RateLimit"
	ErrorTypeRetryBudgetExceeded = "RetryBudget"
	ErrorTypeValidation          = "Validation"
)

// CodeConnAborted is the transport code for a connection that was aborted
// before a response arrived, including client-side timeouts.
const CodeConnAborted = "ECONNABORTED"

// Sentinel errors for common failure scenarios.
var (
	// ErrRateLimited is returned when a dispatch is denied by the rate limiter.
	ErrRateLimited = errors.New("httpadapter: rate limited")

	// ErrRetryBudgetExceeded is returned when a retry is denied by the budget.
	ErrRetryBudgetExceeded = errors.New("httpadapter: retry budget exceeded")
)

// Error is the adapter's rich error value. StatusCode is set when the error
// corresponds to an HTTP response (for example after StatusValidator
// promotion); Code is set for transport-level failures.
type Error struct {
	Type        string
	Message     string
	Cause       error
	StatusCode  int
	Code        string
	RequestID   string
	Method      Method
	URL         string
	Attempt     int
	MaxAttempts int
	Timestamp   time.Time
	Duration    time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Attempt > 0 && e.MaxAttempts > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxAttempts)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Type == targetErr.Type
	}
	switch target {
	case ErrRateLimited:
		return e.Type == ErrorTypeRateLimit
	case ErrRetryBudgetExceeded:
		return e.Type == ErrorTypeRetryBudgetExceeded
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *Error) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.Code != "" {
		info += fmt.Sprintf("Transport Code: %s\n", e.Code)
	}
	if e.Attempt > 0 {
		info += fmt.Sprintf("Attempt: %d/%d\n", e.Attempt, e.MaxAttempts)
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// IsTransient determines whether an error represents a transient failure
// that might succeed on retry. Returns true for network errors, timeouts,
// 5xx statuses and 429; false for other client errors and unknown shapes.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrRetryBudgetExceeded) {
		return true
	}

	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		switch adapterErr.Type {
		case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeServer, ErrorTypeRateLimit:
			return true
		case ErrorTypeClient:
			// 429 Too Many Requests is transient
			return adapterErr.StatusCode == 429
		default:
			return false
		}
	}

	return false
}

// statusCodeOf extracts the HTTP status carried by an error, if any.
func statusCodeOf(err error) (int, bool) {
	var adapterErr *Error
	if errors.As(err, &adapterErr) && adapterErr.StatusCode > 0 {
		return adapterErr.StatusCode, true
	}
	return 0, false
}

// transportCodeOf extracts the transport code carried by an error, if any.
func transportCodeOf(err error) (string, bool) {
	var adapterErr *Error
	if errors.As(err, &adapterErr) && adapterErr.Code != "" {
		return adapterErr.Code, true
	}
	return "", false
}
