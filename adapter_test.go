package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"
)

// fakeTransport is a scriptable Transport for pipeline tests.
type fakeTransport struct {
	calls    int
	requests []*TransportRequest
	respond  func(call int, req *TransportRequest) (*TransportResult, error)
}

func (f *fakeTransport) RoundTrip(_ context.Context, req *TransportRequest) (*TransportResult, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.respond == nil {
		return &TransportResult{Data: []byte(`{}`), Status: 200, Headers: Headers{"Content-Type": "application/json"}}, nil
	}
	return f.respond(f.calls, req)
}

// stubPolicy lets tests control every retry decision.
type stubPolicy struct {
	max          int
	retryOn      func(error) bool
	backoff      func(int) time.Duration
	backoffCalls []int
}

func (p *stubPolicy) MaxAttempts() int { return p.max }

func (p *stubPolicy) RetryOn(err error) bool {
	if p.retryOn == nil {
		return true
	}
	return p.retryOn(err)
}

func (p *stubPolicy) Backoff(attempt int) time.Duration {
	p.backoffCalls = append(p.backoffCalls, attempt)
	if p.backoff == nil {
		return 0
	}
	return p.backoff(attempt)
}

// recordingInterceptor appends hook invocations to a shared trace.
type recordingInterceptor struct {
	name  string
	trace *[]string

	onRequest  func(*Request) (*Request, error)
	onResponse func(*RawResponse) (*RawResponse, error)
	onError    func(error) error
}

func (r *recordingInterceptor) OnRequest(_ context.Context, req *Request) (*Request, error) {
	*r.trace = append(*r.trace, "req:"+r.name)
	if r.onRequest != nil {
		return r.onRequest(req)
	}
	return req, nil
}

func (r *recordingInterceptor) OnResponse(_ context.Context, resp *RawResponse) (*RawResponse, error) {
	*r.trace = append(*r.trace, "resp:"+r.name)
	if r.onResponse != nil {
		return r.onResponse(resp)
	}
	return resp, nil
}

func (r *recordingInterceptor) OnError(_ context.Context, err error, _ *Request) error {
	*r.trace = append(*r.trace, "err:"+r.name)
	if r.onError != nil {
		return r.onError(err)
	}
	return err
}

func TestNewDefaults(t *testing.T) {
	adapter := New()

	if adapter == nil {
		t.Fatal("New() returned nil")
	}
	if adapter.transport == nil {
		t.Error("expected default transport")
	}
	if adapter.timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", adapter.timeout)
	}
	if adapter.retryPolicy != nil {
		t.Error("expected no retry policy by default")
	}
	if !adapter.IsValid() {
		t.Errorf("default adapter invalid: %v", adapter.ValidationError())
	}
}

func TestInterceptorOrderOnSuccess(t *testing.T) {
	var trace []string
	transport := &fakeTransport{}
	adapter := New(
		WithTransport(transport),
		WithInterceptors(
			&recordingInterceptor{name: "a", trace: &trace},
			&recordingInterceptor{name: "b", trace: &trace},
			&recordingInterceptor{name: "c", trace: &trace},
		),
	)

	req := NewRequest("https://api.example.com", "/v1/users").WithMethod(MethodGet)
	if _, err := adapter.Do(context.Background(), req); err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}

	want := []string{"req:a", "req:b", "req:c", "resp:a", "resp:b", "resp:c"}
	if got := strings.Join(trace, ","); got != strings.Join(want, ",") {
		t.Errorf("hook order = %v, want %v", trace, want)
	}
}

func TestOnRequestErrorShortCircuits(t *testing.T) {
	var trace []string
	transport := &fakeTransport{}
	boom := errors.New("boom")
	adapter := New(
		WithTransport(transport),
		WithInterceptors(
			&recordingInterceptor{name: "a", trace: &trace},
			&recordingInterceptor{name: "b", trace: &trace, onRequest: func(*Request) (*Request, error) {
				return nil, boom
			}},
			&recordingInterceptor{name: "c", trace: &trace},
		),
	)

	_, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if transport.calls != 0 {
		t.Errorf("transport invoked %d times, want 0", transport.calls)
	}

	want := []string{"req:a", "req:b", "err:a", "err:b", "err:c"}
	if got := strings.Join(trace, ","); got != strings.Join(want, ",") {
		t.Errorf("hook order = %v, want %v", trace, want)
	}
}

func TestOnResponseErrorRoutesToErrorChain(t *testing.T) {
	var trace []string
	transport := &fakeTransport{}
	reject := errors.New("rejected")
	adapter := New(
		WithTransport(transport),
		WithInterceptors(
			&recordingInterceptor{name: "a", trace: &trace, onResponse: func(*RawResponse) (*RawResponse, error) {
				return nil, reject
			}},
			&recordingInterceptor{name: "b", trace: &trace},
		),
	)

	_, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x"))
	if !errors.Is(err, reject) {
		t.Fatalf("expected rejected, got %v", err)
	}

	// b's OnResponse never runs; both error hooks run in order.
	want := []string{"req:a", "req:b", "resp:a", "err:a", "err:b"}
	if got := strings.Join(trace, ","); got != strings.Join(want, ",") {
		t.Errorf("hook order = %v, want %v", trace, want)
	}
}

func TestErrorChainReplacement(t *testing.T) {
	var trace []string
	transport := &fakeTransport{respond: func(int, *TransportRequest) (*TransportResult, error) {
		return nil, errors.New("transport down")
	}}
	replaced := errors.New("replaced")
	adapter := New(
		WithTransport(transport),
		WithInterceptors(
			&recordingInterceptor{name: "a", trace: &trace, onError: func(err error) error {
				return fmt.Errorf("wrapped: %w", err)
			}},
			&recordingInterceptor{name: "b", trace: &trace, onError: func(err error) error {
				return replaced
			}},
		),
	)

	_, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x"))
	if !errors.Is(err, replaced) {
		t.Fatalf("expected final replacement, got %v", err)
	}

	want := []string{"req:a", "req:b", "err:a", "err:b"}
	if got := strings.Join(trace, ","); got != strings.Join(want, ",") {
		t.Errorf("hook order = %v, want %v", trace, want)
	}
}

func TestRetryRerunsRequestInterceptors(t *testing.T) {
	var trace []string
	transport := &fakeTransport{respond: func(call int, _ *TransportRequest) (*TransportResult, error) {
		if call < 3 {
			return nil, &Error{Type: ErrorTypeServer, StatusCode: 503, Message: "unavailable"}
		}
		return &TransportResult{Data: []byte(`{}`), Status: 200}, nil
	}}
	adapter := New(
		WithTransport(transport),
		WithRetryPolicy(&stubPolicy{max: 3}),
		WithInterceptors(&recordingInterceptor{name: "a", trace: &trace}),
	)

	resp, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x"))
	if err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("status = %d, want 200", resp.Status)
	}
	if transport.calls != 3 {
		t.Errorf("transport invoked %d times, want 3", transport.calls)
	}

	reqRuns := 0
	for _, entry := range trace {
		if entry == "req:a" {
			reqRuns++
		}
	}
	if reqRuns != 3 {
		t.Errorf("OnRequest ran %d times across attempts, want 3", reqRuns)
	}
}

func TestNoRetryWithoutPolicy(t *testing.T) {
	transport := &fakeTransport{respond: func(int, *TransportRequest) (*TransportResult, error) {
		return nil, &Error{Type: ErrorTypeServer, StatusCode: 503, Message: "unavailable"}
	}}
	adapter := New(WithTransport(transport))

	if _, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x")); err == nil {
		t.Fatal("expected error")
	}
	if transport.calls != 1 {
		t.Errorf("transport invoked %d times, want 1", transport.calls)
	}
}

func TestQueryStringConstruction(t *testing.T) {
	transport := &fakeTransport{}
	adapter := New(WithTransport(transport))

	// Empty query mapping: no trailing separator.
	if _, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/v1/items")); err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if got := transport.requests[0].URL; strings.Contains(got, "?") {
		t.Errorf("URL %q contains query separator for empty mapping", got)
	}

	// Non-empty mapping: encoded pairs present.
	req := NewRequest("https://api.example.com", "/v1/items").
		WithQueryParam("page", "2").
		WithQueryParam("q", "a b")
	if _, err := adapter.Do(context.Background(), req); err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	parsed, err := url.Parse(transport.requests[1].URL)
	if err != nil {
		t.Fatalf("invalid URL %q: %v", transport.requests[1].URL, err)
	}
	values := parsed.Query()
	if values.Get("page") != "2" || values.Get("q") != "a b" {
		t.Errorf("query = %q, want page=2 and q=%q", parsed.RawQuery, "a b")
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	var trace []string
	transport := &fakeTransport{}
	adapter := New(
		WithTransport(transport),
		WithInterceptors(&recordingInterceptor{name: "auth", trace: &trace, onRequest: func(req *Request) (*Request, error) {
			// Replacing the request must preserve the correlation identifier.
			return req.WithHeader("Authorization", "Bearer token"), nil
		}}),
	)

	req := NewRequest("https://api.example.com", "/x")
	resp, err := adapter.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if resp.RequestID != req.ID() {
		t.Errorf("response RequestID = %q, want %q", resp.RequestID, req.ID())
	}
}

func TestAbsentHeadersMarker(t *testing.T) {
	transport := &fakeTransport{respond: func(call int, _ *TransportRequest) (*TransportResult, error) {
		if call == 1 {
			return &TransportResult{Data: []byte(`{}`), Status: 200, Headers: nil}, nil
		}
		return &TransportResult{Data: []byte(`{}`), Status: 200, Headers: Headers{}}, nil
	}}
	adapter := New(WithTransport(transport))

	absent, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x"))
	if err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if absent.Headers != nil {
		t.Errorf("expected nil absent-marker, got %v", absent.Headers)
	}

	empty, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x"))
	if err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if empty.Headers == nil {
		t.Error("expected non-nil empty header mapping, got nil")
	}
	if len(empty.Headers) != 0 {
		t.Errorf("expected empty header mapping, got %v", empty.Headers)
	}
}

func TestDefaultMethodIsPost(t *testing.T) {
	transport := &fakeTransport{}
	adapter := New(WithTransport(transport))

	if _, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x")); err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if got := transport.requests[0].Method; got != MethodPost {
		t.Errorf("method = %q, want POST", got)
	}
}

func TestSentAtStamped(t *testing.T) {
	transport := &fakeTransport{}
	adapter := New(WithTransport(transport))

	req := NewRequest("https://api.example.com", "/x")
	if !req.SentAt().IsZero() {
		t.Fatal("SentAt set before dispatch")
	}
	before := time.Now()
	if _, err := adapter.Do(context.Background(), req); err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if req.SentAt().Before(before) {
		t.Errorf("SentAt = %v, want >= %v", req.SentAt(), before)
	}
}

func TestRateLimiterDenial(t *testing.T) {
	transport := &fakeTransport{}
	adapter := New(
		WithTransport(transport),
		WithRateLimiter(1, time.Hour),
	)

	if _, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x")); err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	_, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x"))
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if transport.calls != 1 {
		t.Errorf("transport invoked %d times, want 1", transport.calls)
	}
}

func TestPerRequestTimeoutForwarded(t *testing.T) {
	transport := &fakeTransport{}
	adapter := New(WithTransport(transport), WithTimeout(5*time.Second))

	req := NewRequest("https://api.example.com", "/x").WithTimeout(250 * time.Millisecond)
	if _, err := adapter.Do(context.Background(), req); err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if got := transport.requests[0].Timeout; got != 250*time.Millisecond {
		t.Errorf("forwarded timeout = %v, want 250ms", got)
	}

	// Requests without their own timeout get the adapter default.
	if _, err := adapter.Do(context.Background(), NewRequest("https://api.example.com", "/x")); err != nil {
		t.Fatalf("Do() returned error: %v", err)
	}
	if got := transport.requests[1].Timeout; got != 5*time.Second {
		t.Errorf("forwarded timeout = %v, want 5s", got)
	}
}
