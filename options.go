package httpadapter

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WithTransport sets the transport used for network calls.
func WithTransport(t Transport) Option {
	return func(a *Adapter) {
		a.transport = t
	}
}

// WithHTTPClient wraps a custom http.Client as the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		a.transport = NewHTTPTransportWithClient(client)
	}
}

// WithInterceptors appends interceptors in registration order. The order
// given here is the order every hook chain runs in.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(a *Adapter) {
		a.interceptors = append(a.interceptors, interceptors...)
	}
}

// WithRetryPolicy sets the retry policy. Without one, every dispatch runs
// exactly once.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(a *Adapter) {
		a.retryPolicy = policy
	}
}

// WithMaxAttempts installs the default retry policy limited to n total
// attempts.
func WithMaxAttempts(n int) Option {
	return func(a *Adapter) {
		a.retryPolicy = NewRetryPolicy(n, 100*time.Millisecond, 10*time.Second, 2.0, 50*time.Millisecond)
	}
}

// WithRetryBudget caps total retries across the adapter per window.
func WithRetryBudget(maxRetries int, perWindow time.Duration) Option {
	return func(a *Adapter) {
		a.retryBudget = NewRetryBudget(maxRetries, perWindow)
	}
}

// WithRateLimiter gates dispatch attempts through a token bucket.
func WithRateLimiter(maxTokens int, refillRate time.Duration) Option {
	return func(a *Adapter) {
		a.rateLimiter = NewRateLimiter(maxTokens, refillRate)
	}
}

// WithTimeout sets the default per-request timeout used when a Request
// carries none.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a plain console logger.
func WithSimpleLogger() Option {
	return func(a *Adapter) {
		if a.debug == nil {
			a.debug = DefaultDebugConfig()
		}
		a.debug.Enabled = true
		a.logger = NewSimpleLogger()
	}
}

// WithStructuredLogger enables debug logging with a zerolog-backed logger.
func WithStructuredLogger() Option {
	return func(a *Adapter) {
		if a.debug == nil {
			a.debug = DefaultDebugConfig()
		}
		a.debug.Enabled = true
		a.logger = NewStructuredLogger()
	}
}

// WithDebug enables debug logging with the default category flags.
func WithDebug() Option {
	return func(a *Adapter) {
		if a.debug == nil {
			a.debug = DefaultDebugConfig()
		}
		a.debug.Enabled = true
	}
}

// WithDebugConfig sets a custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(a *Adapter) {
		a.debug = config
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(a *Adapter) {
		a.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(a *Adapter) {
		a.metrics = collector
	}
}

// ValidateConfiguration checks the adapter configuration and returns a
// joined error describing every problem found, or nil.
func (a *Adapter) ValidateConfiguration() error {
	var problems []string

	if a.transport == nil {
		problems = append(problems, "transport must not be nil")
	}
	if a.timeout < 0 {
		problems = append(problems, fmt.Sprintf("timeout must not be negative, got %v", a.timeout))
	}
	if a.retryPolicy != nil && a.retryPolicy.MaxAttempts() < 1 {
		problems = append(problems, fmt.Sprintf("retry policy maxAttempts must be positive, got %d", a.retryPolicy.MaxAttempts()))
	}
	for i, interceptor := range a.interceptors {
		if interceptor == nil {
			problems = append(problems, fmt.Sprintf("interceptor at position %d is nil", i))
		}
	}
	if a.debug != nil && a.debug.Enabled && a.logger == nil {
		problems = append(problems, "debug logging enabled without a logger")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("httpadapter: invalid configuration: %s", strings.Join(problems, "; "))
}
