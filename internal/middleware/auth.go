package middleware

import (
	"maps"
	"net/http"
)

// Auth returns a middleware that sets an authentication header on every request,
// replacing any value the request already carries. Typical header names are
// "Authorization" for bearer tokens and "X-Api-Key" for key-based gateways.
func Auth(headerName, headerValue string) func(http.RoundTripper) http.RoundTripper {
	return Headers(map[string]string{headerName: headerValue}, true)
}

// Headers returns a middleware that adds static headers to every request.
// With override false a header already present on the request is kept.
func Headers(headers map[string]string, override bool) func(http.RoundTripper) http.RoundTripper {
	fixed := maps.Clone(headers)

	return func(next http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			next:     next,
			headers:  fixed,
			override: override,
		}
	}
}

type headerTransport struct {
	next     http.RoundTripper
	headers  map[string]string
	override bool
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = cloneRequest(req)

	for name, value := range t.headers {
		if !t.override && req.Header.Get(name) != "" {
			continue
		}
		req.Header.Set(name, value)
	}

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	for k, v := range req.Header {
		r.Header[k] = append([]string(nil), v...)
	}
	return r
}
