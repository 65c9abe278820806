package observability

import "time"

// MetricsRecorder is an interface for recording metrics.
// Implementations can use any metrics library (Prometheus, StatsD, etc.).
type MetricsRecorder interface {
	// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)

	// RecordRetry records a retry attempt for an endpoint.
	RecordRetry(attempt int, endpoint string)

	// RecordRateLimit records a rate limit wait event.
	RecordRateLimit(endpoint string, wait time.Duration)

	// RecordError records an error occurrence.
	RecordError(operation, errorType string)
}

type noopMetricsRecorder struct{}

// NoopMetricsRecorder returns a metrics recorder that does nothing.
// This is the default recorder used when none is provided.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopMetricsRecorder() MetricsRecorder {
	return &noopMetricsRecorder{}
}

func (m *noopMetricsRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *noopMetricsRecorder) RecordRetry(int, string)                              {}
func (m *noopMetricsRecorder) RecordRateLimit(string, time.Duration)                {}
func (m *noopMetricsRecorder) RecordError(string, string)                           {}

// MetricsOrNoop returns metrics, or NoopMetricsRecorder when metrics is nil.
//
//nolint:ireturn // Returns the interface it was given
func MetricsOrNoop(metrics MetricsRecorder) MetricsRecorder {
	if metrics == nil {
		return NoopMetricsRecorder()
	}
	return metrics
}
