package observability

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements MetricsRecorder with Prometheus collectors.
type PrometheusRecorder struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
	rateLimitWait   *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// Compile-time check to ensure PrometheusRecorder implements MetricsRecorder.
var _ MetricsRecorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors under namespace and registers
// them with reg. A nil reg registers with prometheus.DefaultRegisterer.
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &PrometheusRecorder{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Outgoing HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total outgoing HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_retries_total",
				Help:      "Total retry attempts by endpoint",
			},
			[]string{"endpoint"},
		),
		rateLimitWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rate_limit_wait_seconds",
				Help:      "Time spent waiting on the client-side rate limiter",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors by operation and type",
			},
			[]string{"operation", "type"},
		),
	}

	for _, c := range []prometheus.Collector{
		r.requestDuration,
		r.requestsTotal,
		r.retriesTotal,
		r.rateLimitWait,
		r.errorsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register metrics collector")
		}
	}

	return r, nil
}

// RecordHTTPRequest observes one completed request.
func (r *PrometheusRecorder) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	r.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	r.requestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordRetry counts a retry attempt. The attempt number is not a label.
func (r *PrometheusRecorder) RecordRetry(_ int, endpoint string) {
	r.retriesTotal.WithLabelValues(endpoint).Inc()
}

// RecordRateLimit observes a limiter wait.
func (r *PrometheusRecorder) RecordRateLimit(endpoint string, wait time.Duration) {
	r.rateLimitWait.WithLabelValues(endpoint).Observe(wait.Seconds())
}

// RecordError counts an error.
func (r *PrometheusRecorder) RecordError(operation, errorType string) {
	r.errorsTotal.WithLabelValues(operation, errorType).Inc()
}
