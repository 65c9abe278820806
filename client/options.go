package client

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/transport"
	"github.com/lexfrei/go-apiclient/urlutil"
)

// RequestOption overrides client defaults for a single call.
type RequestOption func(*callOptions)

type callOptions struct {
	headers    map[string]string
	timeout    *time.Duration
	repeatMode *bool
	asFile     bool
	query      *urlutil.Values
	path       *string
}

func applyOptions(opts []RequestOption) *callOptions {
	o := &callOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithHeader sets a header for this call only.
func WithHeader(key, value string) RequestOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		transport.SetHeader(o.headers, key, value)
	}
}

// WithHeaders merges headers into this call's headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for key, value := range headers {
			transport.SetHeader(o.headers, key, value)
		}
	}
}

// WithTimeout overrides the client timeout for this call.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *callOptions) {
		o.timeout = &timeout
	}
}

// WithRepeatMode overrides the client repeat mode for this call.
func WithRepeatMode(enabled bool) RequestOption {
	return func(o *callOptions) {
		o.repeatMode = &enabled
	}
}

// AsFile makes HTTPClient.Get return the raw body bytes instead of a decoded value.
func AsFile() RequestOption {
	return func(o *callOptions) {
		o.asFile = true
	}
}

// WithQuery appends query pairs to the request URL in order.
func WithQuery(values *urlutil.Values) RequestOption {
	return func(o *callOptions) {
		if values == nil {
			return
		}
		if o.query == nil {
			o.query = urlutil.NewValues()
		}
		values.Each(func(key, value string) {
			o.query.Append(key, value)
		})
	}
}

// WithPath sends a GraphQL request to path, resolved against the base URL,
// instead of the base URL itself.
func WithPath(path string) RequestOption {
	return func(o *callOptions) {
		o.path = &path
	}
}

// resolveURL builds the request URL for path and appends any query pairs.
func (o *callOptions) resolveURL(e *Executor, path string) (string, error) {
	return o.withQuery(e.BuildURL(path))
}

func (o *callOptions) withQuery(target string) (string, error) {
	if o.query == nil || o.query.Len() == 0 {
		return target, nil
	}

	u, err := urlutil.Parse(target)
	if err != nil {
		return "", errors.Wrap(err, "apply query parameters")
	}

	o.query.Each(func(key, value string) {
		u.Query.Append(key, value)
	})

	return u.String(), nil
}

func (o *callOptions) request(url string, method transport.Method, body *Body) Request {
	req := Request{
		URL:        url,
		Method:     method,
		Headers:    o.headers,
		Timeout:    o.timeout,
		RepeatMode: o.repeatMode,
	}

	if body != nil {
		req.JSONBody = body.JSON
		req.Multipart = body.Multipart
	}

	return req
}
