package middleware

import (
	"crypto/tls"
	"net/http"
)

// TLSConfig returns a middleware that swaps in an *http.Transport carrying config.
// When next is not an *http.Transport the default transport is cloned instead,
// so TLSConfig belongs at the innermost position of a chain.
// A config without MinVersion gets TLS 1.2.
func TLSConfig(config *tls.Config) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		base, ok := next.(*http.Transport)
		if !ok {
			base, ok = http.DefaultTransport.(*http.Transport)
			if !ok {
				return next
			}
		}

		transport := base.Clone()
		transport.ForceAttemptHTTP2 = true

		cfg := config.Clone()
		if cfg == nil {
			cfg = &tls.Config{}
		}
		if cfg.MinVersion == 0 {
			cfg.MinVersion = tls.VersionTLS12
		}
		transport.TLSClientConfig = cfg

		return transport
	}
}

// InsecureSkipVerify returns a TLS config that skips certificate verification.
// WARNING: only for development hosts with self-signed certificates.
func InsecureSkipVerify() *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true, //nolint:gosec // This is an opt-in feature for dev/test environments
	}
}
