package httpadapter

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the dispatch pipeline.
// It is safe for concurrent use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal    *prometheus.CounterVec
	backoffDuration *prometheus.HistogramVec

	rateLimitedTotal    *prometheus.CounterVec
	retryBudgetExceeded *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "httpadapter_requests_total",
				Help: "Total number of dispatched requests",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "httpadapter_request_duration_seconds",
				Help:    "Duration of dispatched requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "httpadapter_requests_in_flight",
				Help: "Number of requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "httpadapter_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "endpoint", "attempt"},
		),
		backoffDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "httpadapter_backoff_duration_seconds",
				Help:    "Backoff delays scheduled between attempts in seconds",
				Buckets: []float64{.05, .1, .2, .4, .8, 1.6, 3.2, 6.4},
			},
			[]string{"endpoint"},
		),
		rateLimitedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "httpadapter_rate_limited_total",
				Help: "Total number of dispatches denied by the rate limiter",
			},
			[]string{"method", "endpoint"},
		),
		retryBudgetExceeded: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "httpadapter_retry_budget_exceeded_total",
				Help: "Total number of retries denied by the retry budget",
			},
			[]string{"endpoint"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "httpadapter_errors_total",
				Help: "Total number of terminal errors by type",
			},
			[]string{"type", "method", "endpoint"},
		),
	}
}

// RecordRequestStart marks a request in flight.
func (mc *MetricsCollector) RecordRequestStart(method Method, endpoint string) {
	mc.requestsInFlight.WithLabelValues(string(method), endpoint).Inc()
}

// RecordRequestEnd removes a request from the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method Method, endpoint string) {
	mc.requestsInFlight.WithLabelValues(string(method), endpoint).Dec()
}

// RecordRequest records a completed request with its status and duration.
func (mc *MetricsCollector) RecordRequest(method Method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(string(method), status, endpoint).Inc()
	mc.requestDuration.WithLabelValues(string(method), status, endpoint).Observe(duration.Seconds())
}

// RecordRetry records a retry attempt.
func (mc *MetricsCollector) RecordRetry(method Method, endpoint string, attempt int) {
	mc.retriesTotal.WithLabelValues(string(method), endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordBackoff records a scheduled backoff delay.
func (mc *MetricsCollector) RecordBackoff(endpoint string, delay time.Duration) {
	mc.backoffDuration.WithLabelValues(endpoint).Observe(delay.Seconds())
}

// RecordRateLimited increments the rate limiter denial counter.
func (mc *MetricsCollector) RecordRateLimited(method Method, endpoint string) {
	mc.rateLimitedTotal.WithLabelValues(string(method), endpoint).Inc()
}

// RecordRetryBudgetExceeded increments the retry budget denial counter.
func (mc *MetricsCollector) RecordRetryBudgetExceeded(endpoint string) {
	mc.retryBudgetExceeded.WithLabelValues(endpoint).Inc()
}

// RecordError increments the terminal error counter for the given type.
func (mc *MetricsCollector) RecordError(errorType string, method Method, endpoint string) {
	mc.errorsTotal.WithLabelValues(errorType, string(method), endpoint).Inc()
}
