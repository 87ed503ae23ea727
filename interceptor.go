package httpadapter

import (
	"context"
	"fmt"
	"time"
)

// PassthroughInterceptor implements Interceptor with no-op hooks. Embed it
// to implement only the hooks a concern needs.
type PassthroughInterceptor struct{}

// OnRequest returns the request unchanged.
func (PassthroughInterceptor) OnRequest(_ context.Context, req *Request) (*Request, error) {
	return req, nil
}

// OnResponse returns the response unchanged.
func (PassthroughInterceptor) OnResponse(_ context.Context, resp *RawResponse) (*RawResponse, error) {
	return resp, nil
}

// OnError returns the error unchanged.
func (PassthroughInterceptor) OnError(_ context.Context, err error, _ *Request) error {
	return err
}

// HeaderInterceptor sets a fixed header set on every outgoing request.
// Setting is idempotent, so it is safe under retries. Typical use is an
// Authorization or tracing header.
type HeaderInterceptor struct {
	PassthroughInterceptor
	headers Headers
}

// NewHeaderInterceptor creates an interceptor applying the given headers.
func NewHeaderInterceptor(headers Headers) *HeaderInterceptor {
	return &HeaderInterceptor{headers: copyHeaders(headers)}
}

// OnRequest returns a request copy with the configured headers set.
func (h *HeaderInterceptor) OnRequest(_ context.Context, req *Request) (*Request, error) {
	if len(h.headers) == 0 {
		return req, nil
	}
	return req.WithHeaders(h.headers), nil
}

// LoggingInterceptor logs the request lifecycle through all three hooks.
type LoggingInterceptor struct {
	logger Logger
}

// NewLoggingInterceptor creates a logging interceptor.
func NewLoggingInterceptor(logger Logger) *LoggingInterceptor {
	return &LoggingInterceptor{logger: logger}
}

// OnRequest logs the outgoing request.
func (l *LoggingInterceptor) OnRequest(_ context.Context, req *Request) (*Request, error) {
	l.logger.Debug("outgoing request",
		"requestID", req.ID(),
		"method", req.Method(),
		"endpoint", req.Endpoint(),
	)
	return req, nil
}

// OnResponse logs the incoming response.
func (l *LoggingInterceptor) OnResponse(_ context.Context, resp *RawResponse) (*RawResponse, error) {
	l.logger.Debug("incoming response",
		"requestID", resp.RequestID,
		"status", resp.Status,
	)
	return resp, nil
}

// OnError logs and passes through the error.
func (l *LoggingInterceptor) OnError(_ context.Context, err error, req *Request) error {
	l.logger.Warn("request failed",
		"requestID", req.ID(),
		"method", req.Method(),
		"endpoint", req.Endpoint(),
		"error", err,
	)
	return err
}

// StatusValidator promotes selected HTTP statuses to errors. The produced
// *Error carries the status code, which makes status-based retries work:
// the pipeline itself treats every transport response as success, so a
// retry policy only sees a 500 or 429 when something promotes it.
type StatusValidator struct {
	PassthroughInterceptor
	valid func(status int) bool
}

// NewStatusValidator creates a validator accepting statuses for which
// valid returns true. A nil valid accepts 2xx only.
func NewStatusValidator(valid func(status int) bool) *StatusValidator {
	if valid == nil {
		valid = func(status int) bool { return status >= 200 && status < 300 }
	}
	return &StatusValidator{valid: valid}
}

// OnResponse rejects responses with unacceptable statuses.
func (v *StatusValidator) OnResponse(_ context.Context, resp *RawResponse) (*RawResponse, error) {
	if v.valid(resp.Status) {
		return resp, nil
	}
	errType := ErrorTypeClient
	if resp.Status >= 500 {
		errType = ErrorTypeServer
	}
	return nil, &Error{
		Type:       errType,
		Message:    fmt.Sprintf("unexpected status %d", resp.Status),
		StatusCode: resp.Status,
		RequestID:  resp.RequestID,
		Timestamp:  time.Now(),
	}
}
