package main

import (
	"context"
	"fmt"
	"log"
	"time"

	httpadapter "github.com/yildizpay/http-adapter"
)

// httpbinResponse matches the httpbin.org echo response shape loosely; any
// JSON endpoint works here.
type httpbinResponse struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

func main() {
	fmt.Printf("%s\n\n", httpadapter.GetVersion())

	adapter := httpadapter.New(
		httpadapter.WithRetryPolicy(httpadapter.NewDefaultRetryPolicy()),
		httpadapter.WithTimeout(10*time.Second),
		httpadapter.WithInterceptors(
			httpadapter.NewHeaderInterceptor(httpadapter.Headers{
				"X-Client": "http-adapter-example",
			}),
			httpadapter.NewStatusValidator(nil),
		),
		httpadapter.WithSimpleLogger(),
	)
	if !adapter.IsValid() {
		log.Fatalf("invalid adapter configuration: %v", adapter.ValidationError())
	}

	ctx := context.Background()

	// Simple GET with query parameters.
	req := httpadapter.NewRequest("https://httpbin.org", "/get").
		WithMethod(httpadapter.MethodGet).
		WithQueryParam("page", "1")

	resp, err := httpadapter.Send[httpbinResponse](ctx, adapter, req)
	if err != nil {
		log.Fatalf("GET failed: %v", err)
	}
	fmt.Printf("GET %s -> %d (request %s)\n", resp.Data.URL, resp.Status, resp.RequestID)

	// POST with a JSON body. POST is the default method.
	post := httpadapter.NewRequest("https://httpbin.org", "/post").
		WithBody(httpadapter.Body{
			"name":  "example",
			"count": 3,
			"tags":  []string{"a", "b"},
		})

	raw, err := adapter.Do(ctx, post)
	if err != nil {
		log.Fatalf("POST failed: %v", err)
	}
	fmt.Printf("POST -> %d, %d body bytes, correlation %s\n", raw.Status, len(raw.Data), raw.RequestID)
}
