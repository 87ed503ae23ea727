package httpadapter

import (
	"context"
	"errors"
	"time"
)

// Adapter composes an ordered interceptor chain, an optional retry policy
// and a Transport into a single dispatch operation. The interceptor list
// and policy are read-only after construction, so a single Adapter is safe
// for concurrent use; individual dispatches share no mutable state.
type Adapter struct {
	transport    Transport
	interceptors []Interceptor
	retryPolicy  RetryPolicy
	retryBudget  *RetryBudget
	rateLimiter  *RateLimiter
	timeout      time.Duration
	logger       Logger
	debug        *DebugConfig
	metrics      *MetricsCollector

	validationError error
}

// New constructs an Adapter from functional options. A best effort
// validation is performed; call IsValid / ValidationError for errors.
func New(options ...Option) *Adapter {
	a := &Adapter{
		transport: NewHTTPTransport(),
		timeout:   defaultTransportTimeout,
		debug:     DefaultDebugConfig(),
	}

	for _, option := range options {
		option(a)
	}

	if err := a.ValidateConfiguration(); err != nil {
		a.validationError = err
	}

	return a
}

// Do dispatches the request and returns the raw (undecoded) response. With
// no retry policy the dispatch runs exactly once; with a policy each
// retried attempt re-runs the entire dispatch routine, including every
// OnRequest interceptor.
func (a *Adapter) Do(ctx context.Context, req *Request) (*RawResponse, error) {
	start := time.Now()
	endpoint := req.Endpoint()
	method := req.Method()

	if a.debugEnabled() && a.debug.LogRequests {
		a.logger.Debug("starting request",
			"requestID", req.ID(), "method", method, "endpoint", endpoint)
	}
	if a.metrics != nil {
		a.metrics.RecordRequestStart(method, endpoint)
		defer a.metrics.RecordRequestEnd(method, endpoint)
	}

	var resp *RawResponse
	var err error
	if a.retryPolicy == nil {
		resp, err = a.dispatch(ctx, req, 1)
	} else {
		exec := &Executor[*RawResponse]{
			policy: a.retryPolicy,
			budget: a.retryBudget,
			onBackoff: func(attempt int, delay time.Duration) {
				if a.metrics != nil {
					a.metrics.RecordBackoff(endpoint, delay)
				}
				if a.debugEnabled() && a.debug.LogRetries {
					a.logger.Info("scheduling retry",
						"requestID", req.ID(), "attempt", attempt+1, "backoff", delay, "endpoint", endpoint)
				}
			},
		}
		attempt := 0
		resp, err = exec.Execute(ctx, func(ctx context.Context) (*RawResponse, error) {
			attempt++
			return a.dispatch(ctx, req, attempt)
		})
	}

	duration := time.Since(start)
	status := 0
	if resp != nil {
		status = resp.Status
	}
	if a.metrics != nil {
		a.metrics.RecordRequest(method, endpoint, status, duration)
		if err != nil {
			a.metrics.RecordError(errorTypeOf(err), method, endpoint)
			var adapterErr *Error
			if errors.As(err, &adapterErr) && adapterErr.Type == ErrorTypeRetryBudgetExceeded {
				a.metrics.RecordRetryBudgetExceeded(endpoint)
			}
		}
	}
	if err != nil && a.debugEnabled() && a.debug.LogErrors {
		a.logger.Error("request failed",
			"requestID", req.ID(), "method", method, "endpoint", endpoint, "error", err, "duration", duration)
	}

	return resp, err
}

// dispatch runs one full attempt: request interceptors, URL resolution,
// transport invocation, then response or error interceptors. Attempts never
// transition backwards; a retry is a brand-new dispatch.
func (a *Adapter) dispatch(ctx context.Context, req *Request, attempt int) (*RawResponse, error) {
	endpoint := req.Endpoint()

	if a.rateLimiter != nil && !a.rateLimiter.Allow() {
		if a.debugEnabled() && a.debug.LogRateLimit {
			a.logger.Warn("rate limit exceeded", "requestID", req.ID(), "endpoint", endpoint)
		}
		if a.metrics != nil {
			a.metrics.RecordRateLimited(req.Method(), endpoint)
		}
		err := &Error{
			Type:      ErrorTypeRateLimit,
			Message:   "rate limit exceeded",
			RequestID: req.ID(),
			Method:    req.Method(),
			Attempt:   attempt,
			Timestamp: time.Now(),
		}
		return nil, a.runErrorChain(ctx, err, req)
	}

	if attempt > 1 {
		if a.debugEnabled() && a.debug.LogRetries {
			a.logger.Info("retry attempt",
				"requestID", req.ID(), "attempt", attempt, "maxAttempts", a.retryPolicy.MaxAttempts(), "endpoint", endpoint)
		}
		if a.metrics != nil {
			a.metrics.RecordRetry(req.Method(), endpoint, attempt)
		}
	}

	// Request interceptors, registration order. Each hook receives the
	// previous hook's output; a hook error aborts the chain.
	current := req
	for _, interceptor := range a.interceptors {
		next, err := interceptor.OnRequest(ctx, current)
		if err != nil {
			return nil, a.runErrorChain(ctx, err, current)
		}
		if next != nil {
			current = next
		}
	}

	url, err := current.buildURL()
	if err != nil {
		return nil, a.runErrorChain(ctx, err, current)
	}

	timeout := current.Timeout()
	if timeout == 0 {
		timeout = a.timeout
	}

	current.stampSentAt(time.Now())
	result, err := a.transport.RoundTrip(ctx, &TransportRequest{
		URL:     url,
		Method:  current.Method(),
		Headers: current.Headers(),
		Body:    current.BodyMap(),
		Timeout: timeout,
	})
	if err != nil {
		a.decorateError(err, current, attempt)
		return nil, a.runErrorChain(ctx, err, current)
	}

	resp := &RawResponse{
		Data:      result.Data,
		Status:    result.Status,
		Headers:   result.Headers,
		RequestID: current.ID(),
		CreatedAt: time.Now(),
	}

	// Response interceptors, same registration order as the request chain.
	for _, interceptor := range a.interceptors {
		next, err := interceptor.OnResponse(ctx, resp)
		if err != nil {
			return nil, a.runErrorChain(ctx, err, current)
		}
		if next != nil {
			resp = next
		}
	}

	if a.debugEnabled() && a.debug.LogResponses {
		a.logger.Debug("request completed",
			"requestID", current.ID(), "status", resp.Status, "endpoint", endpoint)
	}

	return resp, nil
}

// runErrorChain passes the error through every OnError hook in registration
// order, each hook able to replace the value. The chain output always
// terminates the attempt in failure.
func (a *Adapter) runErrorChain(ctx context.Context, err error, req *Request) error {
	current := err
	for _, interceptor := range a.interceptors {
		current = interceptor.OnError(ctx, current, req)
	}
	return current
}

// decorateError fills dispatch context into adapter errors missing it.
func (a *Adapter) decorateError(err error, req *Request, attempt int) {
	var adapterErr *Error
	if !errors.As(err, &adapterErr) {
		return
	}
	if adapterErr.RequestID == "" {
		adapterErr.RequestID = req.ID()
	}
	if adapterErr.Attempt == 0 {
		adapterErr.Attempt = attempt
	}
	if adapterErr.MaxAttempts == 0 && a.retryPolicy != nil {
		adapterErr.MaxAttempts = a.retryPolicy.MaxAttempts()
	}
}

func (a *Adapter) debugEnabled() bool {
	return a.debug != nil && a.debug.Enabled && a.logger != nil
}

func errorTypeOf(err error) string {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr.Type
	}
	return "Unknown"
}

// IsValid reports whether configuration validation passed at construction.
func (a *Adapter) IsValid() bool {
	return a.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (a *Adapter) ValidationError() error {
	return a.validationError
}
