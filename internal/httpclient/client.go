// Package httpclient assembles *http.Client values from RoundTripper middleware.
package httpclient

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.RoundTripper to add behavior.
// Middleware is applied in order: first middleware is outermost.
type Middleware func(http.RoundTripper) http.RoundTripper

// Client is an HTTP client that supports middleware chaining.
//
// The underlying http.Client carries no Timeout of its own: deadlines are
// expected on the request context, so a per-request timeout larger than any
// client-wide value still applies.
type Client struct {
	base       *http.Client
	transport  http.RoundTripper
	middleware []Middleware
}

// New creates a new HTTP client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		base: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = c.base.Transport
	}

	c.base.Transport = Chain(c.transport, c.middleware...)

	return c
}

// Chain wraps transport with middleware so that middleware[0] is outermost.
// A nil transport means http.DefaultTransport.
//
//	Chain(t, A, B, C) == A(B(C(t)))
func Chain(transport http.RoundTripper, middleware ...Middleware) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}

	for _, mw := range slices.Backward(middleware) {
		if mw != nil {
			transport = mw(transport)
		}
	}

	return transport
}

// Derive returns a client sharing the base transport and middleware of c with
// extra middleware appended at the innermost position.
func (c *Client) Derive(extra ...Middleware) *Client {
	base := *c.base
	derived := &Client{
		base:       &base,
		transport:  c.transport,
		middleware: append(slices.Clone(c.middleware), extra...),
	}
	derived.base.Transport = Chain(derived.transport, derived.middleware...)

	return derived
}

// Do executes an HTTP request using the configured middleware chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	//nolint:wrapcheck // Callers classify transport errors themselves
	return c.base.Do(req)
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}
