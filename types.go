package httpadapter

import (
	"context"
	"encoding/json"
	"time"
)

// Method is an HTTP request method.
type Method string

// Supported HTTP methods.
const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// Headers is a string-to-string header mapping. A nil Headers on a Response
// is the explicit absent-marker: the transport supplied no headers. An empty
// non-nil Headers means the transport supplied an empty set.
type Headers map[string]string

// QueryParams is a string-to-string query parameter mapping.
type QueryParams map[string]string

// Body is a nested string-keyed request body. Values may be primitives,
// nils, slices or nested maps; the transport serializes it as JSON.
type Body map[string]any

// Interceptor is a hook set invoked at fixed points in the request
// lifecycle. All three operations are mandatory. Hooks for a single
// dispatch attempt run strictly sequentially in registration order.
//
// OnRequest and OnResponse return a replacement value; returning nil keeps
// the input. Returning a non-nil error aborts the remaining hooks in that
// chain and routes the dispatch to the error path.
//
// OnError receives the current error value and the current request, and
// returns the (possibly replaced) error. The final error chain output
// always terminates the dispatch attempt in failure; an error cannot be
// converted back into a successful response.
//
// Under a retry policy every attempt re-runs OnRequest, so hooks must
// tolerate repeated invocation for one logical request. Setting a header to
// a fixed value is safe; appending is not.
type Interceptor interface {
	OnRequest(ctx context.Context, req *Request) (*Request, error)
	OnResponse(ctx context.Context, resp *RawResponse) (*RawResponse, error)
	OnError(ctx context.Context, err error, req *Request) error
}

// TransportRequest is the flattened request handed to a Transport.
type TransportRequest struct {
	URL     string
	Method  Method
	Headers Headers
	Body    Body
	Timeout time.Duration
}

// TransportResult is a successful transport outcome. Headers is nil when
// the transport supplied none.
type TransportResult struct {
	Data    json.RawMessage
	Status  int
	Headers Headers
}

// Transport performs the actual network call. Failures are reported as an
// error, ideally an *Error carrying a StatusCode and/or transport Code so
// retry policies can classify them.
//
// The default HTTPTransport returns a TransportResult for every HTTP
// response regardless of status; non-2xx statuses are not errors at this
// boundary. Use StatusValidator (or a custom Transport) to promote selected
// statuses to errors and thereby make them visible to a retry policy.
type Transport interface {
	RoundTrip(ctx context.Context, req *TransportRequest) (*TransportResult, error)
}

// Option configures an Adapter.
type Option func(*Adapter)
