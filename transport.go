package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const defaultTransportTimeout = 30 * time.Second

// HTTPTransport is the default Transport, backed by net/http. It returns a
// TransportResult for every HTTP response regardless of status code;
// network failures and timeouts are normalized into *Error values carrying
// a transport Code so retry policies can classify them.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport with a pre-configured http.Client.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{Timeout: defaultTransportTimeout},
	}
}

// NewHTTPTransportWithClient wraps a caller-supplied http.Client.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// RoundTrip implements Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, req *TransportRequest) (*TransportResult, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{
				Type:      ErrorTypeValidation,
				Message:   "encoding request body",
				Cause:     err,
				Method:    req.Method,
				URL:       req.URL,
				Timestamp: time.Now(),
			}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, bodyReader)
	if err != nil {
		return nil, &Error{
			Type:      ErrorTypeValidation,
			Message:   "building http request",
			Cause:     err,
			Method:    req.Method,
			URL:       req.URL,
			Timestamp: time.Now(),
		}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, t.normalizeError(err, req)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Type:      ErrorTypeNetwork,
			Message:   "reading response body",
			Cause:     err,
			Method:    req.Method,
			URL:       req.URL,
			Timestamp: time.Now(),
		}
	}

	return &TransportResult{
		Data:    data,
		Status:  resp.StatusCode,
		Headers: flattenHeader(resp.Header),
	}, nil
}

// normalizeError maps net/http failures onto the adapter taxonomy. Client
// timeouts and cancelled deadlines become connection-aborted errors, which
// the default retry policy treats as retryable.
func (t *HTTPTransport) normalizeError(err error, req *TransportRequest) *Error {
	adapterErr := &Error{
		Type:      ErrorTypeNetwork,
		Message:   "request failed",
		Cause:     err,
		Method:    req.Method,
		URL:       req.URL,
		Timestamp: time.Now(),
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		adapterErr.Type = ErrorTypeTimeout
		adapterErr.Code = CodeConnAborted
		adapterErr.Message = fmt.Sprintf("request aborted after timeout: %v", req.Timeout)
	}
	return adapterErr
}

// flattenHeader converts a net/http header into the adapter mapping,
// keeping the first value per key. The nil return for an empty header is
// the absent-marker the Response contract requires.
func flattenHeader(h http.Header) Headers {
	if len(h) == 0 {
		return nil
	}
	out := make(Headers, len(h))
	for k, values := range h {
		if len(values) > 0 {
			out[k] = values[0]
		}
	}
	return out
}
