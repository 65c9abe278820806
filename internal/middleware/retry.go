// Package middleware provides http.RoundTripper middleware for the host transport.
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/internal/retry"
	"github.com/lexfrei/go-apiclient/observability"
)

// RetryConfig configures the retry middleware.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	// MaxWait caps a single backoff delay. Zero means uncapped.
	MaxWait time.Duration
	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// Retry returns a middleware that retries failed requests with exponential backoff.
// It retries on network errors and on the statuses accepted by retry.ShouldRetry,
// honouring Retry-After on 429 and 503 responses.
// After the last attempt the final response is returned as is, so status
// classification stays with the caller.
func Retry(cfg RetryConfig) func(http.RoundTripper) http.RoundTripper {
	logger := observability.OrNoop(cfg.Logger)
	metrics := observability.MetricsOrNoop(cfg.Metrics)

	return func(next http.RoundTripper) http.RoundTripper {
		return &retryTransport{
			next:        next,
			maxRetries:  max(cfg.MaxRetries, 0),
			initialWait: cfg.InitialWait,
			maxWait:     cfg.MaxWait,
			logger:      logger,
			metrics:     metrics,
		}
	}
}

type retryTransport struct {
	next        http.RoundTripper
	maxRetries  int
	initialWait time.Duration
	maxWait     time.Duration
	logger      observability.Logger
	metrics     observability.MetricsRecorder
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var bodyBytes []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read request body")
		}
	}

	var (
		lastErr  error
		lastResp *http.Response
	)

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.next.RoundTrip(req)
		if err == nil && !retry.ShouldRetry(resp.StatusCode) {
			return resp, nil
		}

		lastErr, lastResp = err, resp

		if attempt == t.maxRetries {
			break
		}

		t.logger.Warn("retrying request",
			observability.F("attempt", attempt+1),
			observability.F("max_retries", t.maxRetries),
			observability.F("url", req.URL.Redacted()),
			observability.F("method", req.Method),
		)
		t.metrics.RecordRetry(attempt+1, normalizePath(req.URL.Path))

		wait := t.calculateWait(attempt, resp)

		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Wrap(ctx.Err(), "context canceled during retry wait")
		}
	}

	if lastResp != nil {
		return lastResp, nil
	}

	return nil, errors.Wrapf(lastErr, "request failed after %d retries", t.maxRetries)
}

// calculateWait prefers a server supplied Retry-After and falls back to
// exponential backoff.
func (t *retryTransport) calculateWait(attempt int, resp *http.Response) time.Duration {
	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		if header := resp.Header.Get("Retry-After"); header != "" {
			if wait := retry.ParseRetryAfter(header, time.Now()); wait > 0 {
				if t.maxWait > 0 && wait > t.maxWait {
					wait = t.maxWait
				}
				t.logger.Debug("using Retry-After header",
					observability.F("retry_after", header),
					observability.F("wait", wait),
				)
				return wait
			}
		}
	}

	return retry.Backoff(t.initialWait, t.maxWait, attempt)
}
