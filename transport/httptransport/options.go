package httptransport

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/lexfrei/go-apiclient/internal/httpclient"
	"github.com/lexfrei/go-apiclient/internal/middleware"
	"github.com/lexfrei/go-apiclient/observability"
)

type options struct {
	logger  observability.Logger
	metrics observability.MetricsRecorder

	headers map[string]string
	auth    map[string]string

	requestsPerMinute int
	burst             int

	retry middleware.RetryConfig

	httpClient   *http.Client
	roundTripper http.RoundTripper
	tlsConfig    *tls.Config
}

// Option configures a Transport.
type Option func(*options)

func (o *options) tlsMiddleware() httpclient.Middleware {
	if o.tlsConfig == nil {
		return nil
	}

	return middleware.TLSConfig(o.tlsConfig)
}

// WithLogger sets the logger for request, retry and rate limit events.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics observability.MetricsRecorder) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithHeader adds a header sent on every request. Headers carried by the
// request itself take precedence.
func WithHeader(name, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[name] = value
	}
}

// WithAuth sets a credential header on every request, replacing whatever the
// request carries, e.g. WithAuth("X-Api-Key", key).
func WithAuth(headerName, headerValue string) Option {
	return func(o *options) {
		if o.auth == nil {
			o.auth = make(map[string]string)
		}
		o.auth[headerName] = headerValue
	}
}

// WithUserAgent sets the default User-Agent.
func WithUserAgent(userAgent string) Option {
	return WithHeader("User-Agent", userAgent)
}

// WithRateLimit limits outgoing requests to requestsPerMinute, allowing a
// burst of the same size. Zero or negative disables limiting.
func WithRateLimit(requestsPerMinute int) Option {
	return WithBurstRateLimit(requestsPerMinute, requestsPerMinute)
}

// WithBurstRateLimit is WithRateLimit with an explicit burst size.
func WithBurstRateLimit(requestsPerMinute, burst int) Option {
	return func(o *options) {
		if burst <= 0 {
			burst = requestsPerMinute
		}
		o.requestsPerMinute = requestsPerMinute
		o.burst = burst
	}
}

// WithRetry configures retries for requests with RepeatMode set.
// Zero durations keep the defaults.
func WithRetry(maxRetries int, initialWait, maxWait time.Duration) Option {
	return func(o *options) {
		o.retry.MaxRetries = maxRetries
		if initialWait > 0 {
			o.retry.InitialWait = initialWait
		}
		if maxWait > 0 {
			o.retry.MaxWait = maxWait
		}
	}
}

// WithTLSConfig sets the TLS configuration. It replaces any RoundTripper that
// is not an *http.Transport.
func WithTLSConfig(config *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = config
	}
}

// WithInsecureSkipVerify disables certificate verification.
// WARNING: only for development hosts with self-signed certificates.
func WithInsecureSkipVerify() Option {
	return WithTLSConfig(middleware.InsecureSkipVerify())
}

// WithHTTPClient sets the base http.Client. Its Transport becomes the
// innermost layer.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithRoundTripper sets the innermost RoundTripper.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		o.roundTripper = rt
	}
}
