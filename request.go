package httpadapter

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request is an immutable request description. All With* operations are
// copy-on-write: they return a new Request and never mutate the receiver,
// so a Request may be shared across retries and interceptors without
// accidental aliasing.
//
// The correlation identifier is assigned once at construction and is
// carried through every derived Request and into the resulting Response.
type Request struct {
	baseURL  string
	endpoint string
	method   Method
	headers  Headers
	query    QueryParams
	body     Body
	timeout  time.Duration
	id       string
	sentAt   time.Time
}

// NewRequest creates a Request for the given base URL and endpoint path.
// The method defaults to POST.
func NewRequest(baseURL, endpoint string) *Request {
	return &Request{
		baseURL:  baseURL,
		endpoint: endpoint,
		method:   MethodPost,
		id:       uuid.NewString(),
	}
}

// ID returns the correlation identifier assigned at construction.
func (r *Request) ID() string { return r.id }

// BaseURL returns the base URL.
func (r *Request) BaseURL() string { return r.baseURL }

// Endpoint returns the endpoint path.
func (r *Request) Endpoint() string { return r.endpoint }

// Method returns the HTTP method.
func (r *Request) Method() Method { return r.method }

// Timeout returns the per-request timeout, zero when unset.
func (r *Request) Timeout() time.Duration { return r.timeout }

// SentAt returns the timestamp stamped immediately before the most recent
// transport invocation, zero before the first dispatch.
func (r *Request) SentAt() time.Time { return r.sentAt }

// Headers returns a copy of the header mapping.
func (r *Request) Headers() Headers {
	return copyHeaders(r.headers)
}

// Header returns a single header value.
func (r *Request) Header(key string) string { return r.headers[key] }

// Query returns a copy of the query parameter mapping.
func (r *Request) Query() QueryParams {
	if r.query == nil {
		return nil
	}
	out := make(QueryParams, len(r.query))
	for k, v := range r.query {
		out[k] = v
	}
	return out
}

// BodyMap returns a shallow copy of the body mapping, nil when absent.
func (r *Request) BodyMap() Body {
	if r.body == nil {
		return nil
	}
	out := make(Body, len(r.body))
	for k, v := range r.body {
		out[k] = v
	}
	return out
}

// clone copies the request including its maps. The correlation identifier
// is preserved.
func (r *Request) clone() *Request {
	next := *r
	next.headers = copyHeaders(r.headers)
	if r.query != nil {
		next.query = make(QueryParams, len(r.query))
		for k, v := range r.query {
			next.query[k] = v
		}
	}
	if r.body != nil {
		next.body = make(Body, len(r.body))
		for k, v := range r.body {
			next.body[k] = v
		}
	}
	return &next
}

// WithMethod returns a copy using the given HTTP method.
func (r *Request) WithMethod(m Method) *Request {
	next := r.clone()
	next.method = m
	return next
}

// WithBaseURL returns a copy using the given base URL.
func (r *Request) WithBaseURL(baseURL string) *Request {
	next := r.clone()
	next.baseURL = baseURL
	return next
}

// WithEndpoint returns a copy using the given endpoint path.
func (r *Request) WithEndpoint(endpoint string) *Request {
	next := r.clone()
	next.endpoint = endpoint
	return next
}

// WithHeader returns a copy with the header set.
func (r *Request) WithHeader(key, value string) *Request {
	next := r.clone()
	if next.headers == nil {
		next.headers = make(Headers, 1)
	}
	next.headers[key] = value
	return next
}

// WithHeaders returns a copy with all given headers set.
func (r *Request) WithHeaders(h Headers) *Request {
	next := r.clone()
	if next.headers == nil {
		next.headers = make(Headers, len(h))
	}
	for k, v := range h {
		next.headers[k] = v
	}
	return next
}

// WithQueryParam returns a copy with the query parameter set.
func (r *Request) WithQueryParam(key, value string) *Request {
	next := r.clone()
	if next.query == nil {
		next.query = make(QueryParams, 1)
	}
	next.query[key] = value
	return next
}

// WithQuery returns a copy with all given query parameters set.
func (r *Request) WithQuery(q QueryParams) *Request {
	next := r.clone()
	if next.query == nil {
		next.query = make(QueryParams, len(q))
	}
	for k, v := range q {
		next.query[k] = v
	}
	return next
}

// WithBody returns a copy using the given body.
func (r *Request) WithBody(b Body) *Request {
	next := r.clone()
	next.body = b
	return next
}

// WithTimeout returns a copy using the given per-request timeout.
func (r *Request) WithTimeout(d time.Duration) *Request {
	next := r.clone()
	next.timeout = d
	return next
}

// stampSentAt records the transport invocation time. This is the one
// mutable field on a Request.
func (r *Request) stampSentAt(t time.Time) { r.sentAt = t }

// buildURL resolves the endpoint against the base URL and appends the
// encoded query string. An empty query mapping appends nothing, in
// particular no trailing separator.
func (r *Request) buildURL() (string, error) {
	full := joinURL(r.baseURL, r.endpoint)
	if _, err := url.Parse(full); err != nil {
		return "", &Error{
			Type:      ErrorTypeValidation,
			Message:   fmt.Sprintf("invalid request URL %q", full),
			Cause:     err,
			RequestID: r.id,
			Method:    r.method,
			Timestamp: time.Now(),
		}
	}
	if len(r.query) == 0 {
		return full, nil
	}
	values := url.Values{}
	for k, v := range r.query {
		values.Set(k, v)
	}
	return full + "?" + values.Encode(), nil
}

func joinURL(base, endpoint string) string {
	if base == "" {
		return endpoint
	}
	if endpoint == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

func copyHeaders(h Headers) Headers {
	if h == nil {
		return nil
	}
	out := make(Headers, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
