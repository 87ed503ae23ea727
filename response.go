package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Response is an immutable response tuple. RequestID equals the correlation
// identifier of the Request that produced it, enabling end-to-end tracing.
//
// Headers is nil when the transport supplied no headers; this absent-marker
// is distinct from an empty mapping.
type Response[T any] struct {
	Data      T
	Status    int
	Headers   Headers
	RequestID string
	CreatedAt time.Time
}

// RawResponse is the pipeline currency: the undecoded response passed
// through interceptor OnResponse hooks.
type RawResponse = Response[json.RawMessage]

// Decode unmarshals a raw response body into a typed Response. An empty
// body yields the zero value of T.
func Decode[T any](raw *RawResponse) (*Response[T], error) {
	var data T
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return nil, &Error{
				Type:       ErrorTypeValidation,
				Message:    fmt.Sprintf("decoding response body into %T", data),
				Cause:      err,
				StatusCode: raw.Status,
				RequestID:  raw.RequestID,
				Timestamp:  time.Now(),
			}
		}
	}
	return &Response[T]{
		Data:      data,
		Status:    raw.Status,
		Headers:   raw.Headers,
		RequestID: raw.RequestID,
		CreatedAt: raw.CreatedAt,
	}, nil
}

// Send dispatches the request through the adapter and decodes the response
// body into T. It is the typed counterpart of Adapter.Do.
func Send[T any](ctx context.Context, a *Adapter, req *Request) (*Response[T], error) {
	raw, err := a.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return Decode[T](raw)
}
