// Package transport defines the boundary between API clients and the host
// that actually performs network I/O.
//
// A host transport receives a fully resolved RequestConfig and returns the
// raw status code and body bytes. Transport-level faults (DNS, refused
// connections, timeouts enforced by the host) are reported as errors; HTTP
// status codes, including 4xx and 5xx, are never errors at this layer.
package transport

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Method is an HTTP method supported by the host transport.
type Method string

// Supported methods.
const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// AllowsBody reports whether requests with this method may carry a body.
func (m Method) AllowsBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// IsValid reports whether m is one of the supported methods.
func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	default:
		return false
	}
}

func (m Method) String() string {
	return string(m)
}

var (
	// ErrTransport marks faults raised by the host while performing a request.
	ErrTransport = errors.New("transport failure")

	// ErrInvalidRequest marks a request configuration that cannot be sent.
	ErrInvalidRequest = errors.New("invalid request")
)

// MultipartPart is a single file part of a multipart/form-data body.
type MultipartPart struct {
	// Key is the form field name.
	Key string
	// FileName is reported in the part's Content-Disposition.
	FileName string
	// Content is the raw file content.
	Content []byte
	// ContentType is the MIME type of the part.
	ContentType string
}

// RequestConfig is a single request as handed to the host transport.
type RequestConfig struct {
	URL     string
	Method  Method
	Headers map[string]string

	// Timeout is forwarded to the host for enforcement. Zero means the host default.
	Timeout time.Duration

	// RepeatMode asks the host to repeat failed attempts on its side.
	RepeatMode bool

	// JSONBody is serialized as JSON when non-nil.
	JSONBody any

	// Multipart is sent as multipart/form-data when non-empty.
	Multipart []MultipartPart
}

// HasBody reports whether the request carries a JSON or multipart payload.
func (c *RequestConfig) HasBody() bool {
	return c.JSONBody != nil || len(c.Multipart) > 0
}

// Validate checks method and body invariants.
func (c *RequestConfig) Validate() error {
	if c.URL == "" {
		return errors.Mark(errors.New("request URL is required"), ErrInvalidRequest)
	}

	if !c.Method.IsValid() {
		return errors.Mark(errors.Newf("unsupported method %q", string(c.Method)), ErrInvalidRequest)
	}

	if !c.Method.AllowsBody() && c.HasBody() {
		return errors.Mark(errors.Newf("%s request must not carry a body", c.Method), ErrInvalidRequest)
	}

	if c.JSONBody != nil && len(c.Multipart) > 0 {
		return errors.Mark(errors.New("request cannot carry both JSON and multipart bodies"), ErrInvalidRequest)
	}

	return nil
}

// Clone returns a copy with its own header map and part slice.
// Body payloads themselves are shared.
func (c *RequestConfig) Clone() *RequestConfig {
	out := *c
	out.Headers = make(map[string]string, len(c.Headers))
	maps.Copy(out.Headers, c.Headers)
	out.Multipart = slices.Clone(c.Multipart)
	return &out
}

// SetHeader sets name to value in headers, replacing any key that differs
// from name only in case.
func SetHeader(headers map[string]string, name, value string) {
	DeleteHeader(headers, name)
	headers[name] = value
}

// DeleteHeader removes every key equal to name ignoring case.
func DeleteHeader(headers map[string]string, name string) {
	for key := range headers {
		if strings.EqualFold(key, name) {
			delete(headers, key)
		}
	}
}

// LookupHeader returns the value of name ignoring case.
func LookupHeader(headers map[string]string, name string) (string, bool) {
	if value, ok := headers[name]; ok {
		return value, true
	}
	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}

	return "", false
}

// RequestResult is what the host returns for a completed round trip.
type RequestResult struct {
	StatusCode int
	// Body is nil when the host reported no body at all.
	Body []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *RequestResult) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport performs a single blocking request.
// Implementations must return a non-nil result whenever err is nil.
type Transport interface {
	Request(ctx context.Context, cfg *RequestConfig) (*RequestResult, error)
}

// Func adapts a plain function to the Transport interface.
type Func func(ctx context.Context, cfg *RequestConfig) (*RequestResult, error)

// Request calls f(ctx, cfg).
func (f Func) Request(ctx context.Context, cfg *RequestConfig) (*RequestResult, error) {
	return f(ctx, cfg)
}
