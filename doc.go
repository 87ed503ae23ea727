// Package httpadapter provides a resilient HTTP dispatch pipeline: callers
// build an immutable Request, hand it to an Adapter, and receive a typed
// Response or a terminal error.
//
//   - Ordered interceptor chain (request / response / error hooks)
//   - Retries with pluggable policies and exponential backoff + jitter
//   - Retry budget and token-bucket rate limiting
//   - Correlation identifiers carried from Request to Response
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Copy-on-write requests: no shared mutable state between attempts
//   - Safe concurrent use of a single *Adapter instance
//   - Extensibility via user supplied interceptors, policies and transports
//
// Typical usage:
//
//	adapter := httpadapter.New(
//	    httpadapter.WithRetryPolicy(httpadapter.NewDefaultRetryPolicy()),
//	    httpadapter.WithInterceptors(
//	        httpadapter.NewHeaderInterceptor(httpadapter.Headers{"Authorization": "Bearer ..."}),
//	        httpadapter.NewStatusValidator(nil),
//	    ),
//	)
//	req := httpadapter.NewRequest("https://api.example.com", "/v1/users").
//	    WithMethod(httpadapter.MethodGet)
//	resp, err := httpadapter.Send[User](ctx, adapter, req)
//
// The pipeline itself treats every HTTP status as a successful dispatch;
// add a StatusValidator to promote selected statuses to errors and make
// them eligible for status-based retries.
package httpadapter
