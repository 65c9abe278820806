package middleware

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/observability"
)

// Observability returns a middleware that logs and records metrics for HTTP requests.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	logger = observability.OrNoop(logger)
	metrics = observability.MetricsOrNoop(metrics)

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	urlStr := req.URL.Redacted()

	t.logger.Debug("http request started",
		observability.F("method", req.Method),
		observability.F("url", urlStr),
	)

	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		kind := classifyError(err)

		t.logger.Error("http request failed",
			observability.F("method", req.Method),
			observability.F("url", urlStr),
			observability.F("duration", duration),
			observability.F("kind", kind),
			observability.F("error", err.Error()),
		)

		t.metrics.RecordError("http_request", kind)

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	fields := []observability.Field{
		observability.F("method", req.Method),
		observability.F("url", urlStr),
		observability.F("status", resp.StatusCode),
		observability.F("duration", duration),
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("http request completed with error status", fields...)
	} else {
		t.logger.Debug("http request completed", fields...)
	}

	t.metrics.RecordHTTPRequest(req.Method, normalizePath(req.URL.Path), resp.StatusCode, duration)

	return resp, nil
}

// classifyError maps a round trip error to a coarse metric label.
func classifyError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNSError"
	}

	return "NetworkError"
}

var (
	// idPattern matches UUIDs, 24-hex ObjectIDs and numeric IDs of five or more
	// digits in one pass. Order matters: UUID first, then ObjectID, then numeric.
	idPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}|[0-9a-fA-F]{24}|/\d{5,}(?:/|$)`)

	normalizedPathCache sync.Map
)

// normalizePath replaces dynamic path segments with ":id" so metric label
// cardinality stays bounded across integrations that embed record IDs in paths.
//
// Examples:
//   - /v1/records/507f1f77bcf86cd799439011 -> /v1/records/:id
//   - /users/550e8400-e29b-41d4-a716-446655440000/files -> /users/:id/files
//   - /orders/1234567 -> /orders/:id
func normalizePath(path string) string {
	if cached, ok := normalizedPathCache.Load(path); ok {
		//nolint:forcetypeassert // Cache only stores strings
		return cached.(string)
	}

	normalized := idPattern.ReplaceAllStringFunc(path, func(match string) string {
		if match[0] == '/' {
			if match[len(match)-1] == '/' {
				return "/:id/"
			}
			return "/:id"
		}
		return ":id"
	})

	normalizedPathCache.Store(path, normalized)

	return normalized
}
