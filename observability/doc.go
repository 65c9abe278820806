// Package observability provides interfaces for logging and metrics collection
// in the go-apiclient library.
//
// This package defines standard interfaces that allow users to integrate their
// own logging and metrics implementations with the API clients and the
// net/http host transport.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs:
//
//	logger := observability.NewLogrusLogger(logrus.New())
//	tr := httptransport.New(httptransport.WithLogger(logger))
//
// Adapters are provided for logrus (NewLogrusLogger) and log/slog
// (NewSlogLogger). Any other library can be plugged in by implementing
// the five Logger methods.
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks transport metrics:
//
//	metrics, err := observability.NewPrometheusRecorder(prometheus.DefaultRegisterer, "apiclient")
//	tr := httptransport.New(httptransport.WithMetrics(metrics))
//
// Tracked metrics include:
//   - HTTP request count, status codes, and duration
//   - Retry attempts for failed requests
//   - Rate limiting events and wait times
//   - Error occurrences by type
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, no-op implementations are
// used that discard all events.
package observability
