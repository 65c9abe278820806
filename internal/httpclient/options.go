package httpclient

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring the HTTP client.
type Option func(*Client)

// WithHTTPClient sets the underlying http.Client. Its Transport, when set,
// becomes the innermost layer of the middleware chain.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			clone := *client
			c.base = &clone
		}
	}
}

// WithTimeout sets a client-wide timeout on top of any request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.base.Timeout = timeout
	}
}

// WithTransport sets the innermost HTTP transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithMiddleware adds middleware to the client.
// The first middleware in the slice becomes the outermost layer:
//
//	WithMiddleware(A, B, C) creates chain: A(B(C(transport)))
//	Request flow: A -> B -> C -> transport -> server
//	Response flow: server -> transport -> C -> B -> A
//
// Outer concerns such as observability go first, inner ones such as
// rate limiting and retries last.
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}
