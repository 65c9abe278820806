package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/lexfrei/go-apiclient/observability"
)

// RateLimiterSelector chooses which rate limiter to use for a given request.
// Returns the rate limiter and a descriptive name for logging/metrics.
// A nil limiter lets the request through unthrottled.
type RateLimiterSelector func(*http.Request) (*rate.Limiter, string)

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	Limiter  *rate.Limiter       // Single limiter (used if Selector is nil)
	Selector RateLimiterSelector // Optional: select limiter based on request
	Logger   observability.Logger
	Metrics  observability.MetricsRecorder
}

// RateLimit returns a middleware that applies rate limiting to requests.
//
// Two modes of operation:
//  1. Single limiter: set cfg.Limiter for uniform rate limiting.
//  2. Selector mode: set cfg.Selector to choose a limiter per request, e.g. per host.
func RateLimit(cfg RateLimitConfig) func(http.RoundTripper) http.RoundTripper {
	logger := observability.OrNoop(cfg.Logger)
	metrics := observability.MetricsOrNoop(cfg.Metrics)

	return func(next http.RoundTripper) http.RoundTripper {
		return &rateLimitTransport{
			next:     next,
			limiter:  cfg.Limiter,
			selector: cfg.Selector,
			logger:   logger,
			metrics:  metrics,
		}
	}
}

type rateLimitTransport struct {
	next     http.RoundTripper
	limiter  *rate.Limiter
	selector RateLimiterSelector
	logger   observability.Logger
	metrics  observability.MetricsRecorder
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	limiter, endpoint := t.limiter, "default"
	if t.selector != nil {
		limiter, endpoint = t.selector(req)
	}

	if limiter != nil {
		if err := t.wait(req.Context(), limiter, endpoint, req.URL.Path); err != nil {
			return nil, err
		}
	}

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

func (t *rateLimitTransport) wait(ctx context.Context, limiter *rate.Limiter, endpoint, path string) error {
	reservation := limiter.Reserve()
	if !reservation.OK() {
		return errors.New("rate limit reservation failed")
	}

	delay := reservation.Delay()
	if delay <= 0 {
		return nil
	}

	t.logger.Debug("rate limit delay",
		observability.F("endpoint", endpoint),
		observability.F("delay", delay),
		observability.F("path", path),
	)
	t.metrics.RecordRateLimit(endpoint, delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return errors.Wrap(ctx.Err(), "context canceled during rate limit wait")
	}
}
