package client

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/internal/response"
	"github.com/lexfrei/go-apiclient/transport"
)

// Body is the optional payload of POST, PUT and PATCH calls.
// Only the fields that are set reach the request.
type Body struct {
	JSON      any
	Multipart []transport.MultipartPart
}

// JSONBody returns a Body carrying v as JSON.
func JSONBody(v any) *Body {
	return &Body{JSON: v}
}

// MultipartBody returns a Body carrying parts as multipart/form-data.
func MultipartBody(parts ...transport.MultipartPart) *Body {
	return &Body{Multipart: parts}
}

// HTTPClient performs REST calls and decodes their bodies.
//
// Decoded values follow encoding/json conventions: objects are
// map[string]any, arrays []any, numbers float64. A body that is not JSON is
// returned as a string. 204 No Content yields a nil value and no error.
type HTTPClient struct {
	*Executor
}

// NewHTTPClient creates a REST client.
func NewHTTPClient(cfg Config, tr transport.Transport) *HTTPClient {
	return &HTTPClient{Executor: NewExecutor(cfg, tr)}
}

// Get performs a GET and decodes the body. With AsFile the raw bytes are
// returned as []byte instead.
func (c *HTTPClient) Get(ctx context.Context, path string, opts ...RequestOption) (any, error) {
	o := applyOptions(opts)

	result, err := c.do(ctx, transport.MethodGet, path, nil, o)
	if err != nil {
		return nil, err
	}

	if o.asFile {
		return result.Body, nil
	}

	return decodeResponse(result)
}

// GetFile performs a GET and returns the body bytes without decoding.
func (c *HTTPClient) GetFile(ctx context.Context, path string, opts ...RequestOption) ([]byte, error) {
	result, err := c.do(ctx, transport.MethodGet, path, nil, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return result.Body, nil
}

// Post performs a POST with an optional body and decodes the response.
func (c *HTTPClient) Post(ctx context.Context, path string, body *Body, opts ...RequestOption) (any, error) {
	return c.send(ctx, transport.MethodPost, path, body, opts)
}

// Put performs a PUT with an optional body and decodes the response.
func (c *HTTPClient) Put(ctx context.Context, path string, body *Body, opts ...RequestOption) (any, error) {
	return c.send(ctx, transport.MethodPut, path, body, opts)
}

// Patch performs a PATCH with an optional body and decodes the response.
func (c *HTTPClient) Patch(ctx context.Context, path string, body *Body, opts ...RequestOption) (any, error) {
	return c.send(ctx, transport.MethodPatch, path, body, opts)
}

// Delete performs a DELETE and decodes the response.
func (c *HTTPClient) Delete(ctx context.Context, path string, opts ...RequestOption) (any, error) {
	return c.send(ctx, transport.MethodDelete, path, nil, opts)
}

// Do performs a request and returns the result after interceptors ran,
// without decoding. Status codes are not interpreted unless an interceptor
// such as ErrorInterceptor does so.
func (c *HTTPClient) Do(ctx context.Context, method transport.Method, path string, body *Body, opts ...RequestOption) (*transport.RequestResult, error) {
	return c.do(ctx, method, path, body, applyOptions(opts))
}

func (c *HTTPClient) send(ctx context.Context, method transport.Method, path string, body *Body, opts []RequestOption) (any, error) {
	result, err := c.do(ctx, method, path, body, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return decodeResponse(result)
}

func (c *HTTPClient) do(ctx context.Context, method transport.Method, path string, body *Body, o *callOptions) (*transport.RequestResult, error) {
	url, err := o.resolveURL(c.Executor, path)
	if err != nil {
		return nil, err
	}

	return c.Execute(ctx, c.MergeConfig(o.request(url, method, body)))
}

func decodeResponse(result *transport.RequestResult) (any, error) {
	if result.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if result.Body == nil {
		return nil, errors.Mark(errors.Newf("no body in response with status %d", result.StatusCode), ErrEmptyResponse)
	}

	value, err := response.DecodeJSONOrText(result.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "decode response with status %d", result.StatusCode)
	}

	return value, nil
}
