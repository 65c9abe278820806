package client

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/transport"
	"github.com/lexfrei/go-apiclient/urlutil"
)

// DefaultTimeout applies when a Config carries no positive timeout.
const DefaultTimeout = 30 * time.Second

// Config holds the defaults a client applies to every request.
type Config struct {
	// BaseURL is joined with relative request paths. Trailing slashes are stripped.
	BaseURL string
	Headers map[string]string
	// Timeout is forwarded to the transport. Zero or negative means DefaultTimeout.
	Timeout    time.Duration
	RepeatMode bool
}

// Request is a single call before client defaults are applied.
// A nil Timeout or RepeatMode falls back to the client default.
type Request struct {
	URL        string
	Method     transport.Method
	Headers    map[string]string
	Timeout    *time.Duration
	RepeatMode *bool
	JSONBody   any
	Multipart  []transport.MultipartPart
}

// Executor owns a client's configuration and interceptor pipeline and drives
// each request through the transport. HTTPClient and GraphQLClient embed it.
//
// An Executor is meant to be used from one call sequence at a time; changing
// headers or interceptors while requests are in flight is not supported.
type Executor struct {
	baseURL      string
	headers      *Headers
	timeout      time.Duration
	repeatMode   bool
	transport    transport.Transport
	interceptors []Interceptor
}

// NewExecutor creates an Executor with its own header store.
func NewExecutor(cfg Config, tr transport.Transport) *Executor {
	return newExecutor(cfg, NewHeaders(cfg.Headers), tr)
}

// newExecutor creates an Executor around an existing header store.
// cfg.Headers is ignored.
func newExecutor(cfg Config, headers *Headers, tr transport.Transport) *Executor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Executor{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		headers:    headers,
		timeout:    timeout,
		repeatMode: cfg.RepeatMode,
		transport:  tr,
	}
}

// Use appends interceptor to the pipeline. Interceptors run in the order
// they were added. A nil interceptor, including a typed nil pointer, is ignored.
func (e *Executor) Use(interceptor Interceptor) *Executor {
	if !isNilInterceptor(interceptor) {
		e.interceptors = append(e.interceptors, interceptor)
	}
	return e
}

// SetHeader sets a default header for all subsequent requests.
func (e *Executor) SetHeader(key, value string) *Executor {
	e.headers.Set(key, value)
	return e
}

// RemoveHeader removes a default header for all subsequent requests.
func (e *Executor) RemoveHeader(key string) *Executor {
	e.headers.Delete(key)
	return e
}

// BaseURL returns the base URL without trailing slashes.
func (e *Executor) BaseURL() string {
	return e.baseURL
}

// Headers returns the header store backing this executor.
func (e *Executor) Headers() *Headers {
	return e.headers
}

// Config returns a snapshot of the effective configuration.
func (e *Executor) Config() Config {
	return Config{
		BaseURL:    e.baseURL,
		Headers:    e.headers.Snapshot(),
		Timeout:    e.timeout,
		RepeatMode: e.repeatMode,
	}
}

// BuildURL resolves path against the base URL. A path starting with
// http:// or https:// is returned unchanged; otherwise exactly one "/"
// separates the base from the path.
func (e *Executor) BuildURL(path string) string {
	if urlutil.IsAbsolute(path) {
		return path
	}
	return urlutil.Join(e.baseURL, path)
}

// MergeConfig applies client defaults to req. Per-call headers win over
// default headers with the same name in any casing.
func (e *Executor) MergeConfig(req Request) *transport.RequestConfig {
	headers := e.headers.Snapshot()
	for name, value := range req.Headers {
		transport.SetHeader(headers, name, value)
	}

	timeout := e.timeout
	if req.Timeout != nil {
		timeout = *req.Timeout
	}

	repeatMode := e.repeatMode
	if req.RepeatMode != nil {
		repeatMode = *req.RepeatMode
	}

	return &transport.RequestConfig{
		URL:        req.URL,
		Method:     req.Method,
		Headers:    headers,
		Timeout:    timeout,
		RepeatMode: repeatMode,
		JSONBody:   req.JSONBody,
		Multipart:  req.Multipart,
	}
}

// Execute runs cfg through the interceptor pipeline and the transport.
//
// OnRequest hooks fold over a copy of cfg and may abort the call. A transport
// fault is shown to every OnError hook and then returned, or replaced by the
// last non-nil error a hook returned; no OnResponse hook runs in that case.
// Otherwise OnResponse hooks fold over the result whatever its status code.
func (e *Executor) Execute(ctx context.Context, cfg *transport.RequestConfig) (*transport.RequestResult, error) {
	if e.transport == nil {
		return nil, errors.Mark(errors.New("client has no transport"), ErrConfiguration)
	}

	current := cfg.Clone()
	for _, interceptor := range e.interceptors {
		next, err := interceptor.OnRequest(ctx, current)
		if err != nil {
			return nil, errors.Wrap(err, "request interceptor")
		}
		if next != nil {
			current = next
		}
	}

	if err := current.Validate(); err != nil {
		return nil, err
	}

	result, err := e.transport.Request(ctx, current)
	if err != nil {
		return nil, e.handleError(ctx, err)
	}

	if result == nil {
		return nil, e.handleError(ctx,
			errors.Mark(errors.Newf("transport returned no result for %s %s", current.Method, current.URL), transport.ErrTransport))
	}

	for _, interceptor := range e.interceptors {
		next, err := interceptor.OnResponse(ctx, result)
		if err != nil {
			//nolint:wrapcheck // Interceptor errors are the caller-facing classification
			return nil, err
		}
		if next != nil {
			result = next
		}
	}

	return result, nil
}

func (e *Executor) handleError(ctx context.Context, original error) error {
	propagated := original
	for _, interceptor := range e.interceptors {
		if replaced := interceptor.OnError(ctx, original); replaced != nil {
			propagated = replaced
		}
	}

	//nolint:wrapcheck // Transport and interceptor errors are returned as classified
	return propagated
}

func isNilInterceptor(interceptor Interceptor) bool {
	if interceptor == nil {
		return true
	}

	v := reflect.ValueOf(interceptor)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
