package client

import (
	"context"

	"github.com/lexfrei/go-apiclient/transport"
)

// API combines a REST and a GraphQL client over one header store.
// A header set through either delegate or through API is seen by both,
// including the Content-Type the GraphQL delegate installs.
type API struct {
	headers *Headers
	http    *HTTPClient
	graphQL *GraphQLClient
}

// NewAPI creates the facade.
func NewAPI(cfg Config, tr transport.Transport, opts ...GraphQLOption) *API {
	headers := NewHeaders(cfg.Headers)

	return &API{
		headers: headers,
		http:    &HTTPClient{Executor: newExecutor(cfg, headers, tr)},
		graphQL: newGraphQLClient(newExecutor(cfg, headers, tr), opts),
	}
}

// HTTP returns the REST delegate.
func (a *API) HTTP() *HTTPClient { return a.http }

// GraphQL returns the GraphQL delegate.
func (a *API) GraphQL() *GraphQLClient { return a.graphQL }

// Headers returns the shared header store.
func (a *API) Headers() *Headers { return a.headers }

// SetHeader sets a default header for both delegates.
func (a *API) SetHeader(key, value string) *API {
	a.headers.Set(key, value)
	return a
}

// RemoveHeader removes a default header from both delegates.
func (a *API) RemoveHeader(key string) *API {
	a.headers.Delete(key)
	return a
}

// Use appends interceptor to both delegates.
func (a *API) Use(interceptor Interceptor) *API {
	a.http.Use(interceptor)
	a.graphQL.Use(interceptor)
	return a
}

// Get delegates to HTTPClient.Get.
func (a *API) Get(ctx context.Context, path string, opts ...RequestOption) (any, error) {
	return a.http.Get(ctx, path, opts...)
}

// GetFile delegates to HTTPClient.GetFile.
func (a *API) GetFile(ctx context.Context, path string, opts ...RequestOption) ([]byte, error) {
	return a.http.GetFile(ctx, path, opts...)
}

// Post delegates to HTTPClient.Post.
func (a *API) Post(ctx context.Context, path string, body *Body, opts ...RequestOption) (any, error) {
	return a.http.Post(ctx, path, body, opts...)
}

// Put delegates to HTTPClient.Put.
func (a *API) Put(ctx context.Context, path string, body *Body, opts ...RequestOption) (any, error) {
	return a.http.Put(ctx, path, body, opts...)
}

// Patch delegates to HTTPClient.Patch.
func (a *API) Patch(ctx context.Context, path string, body *Body, opts ...RequestOption) (any, error) {
	return a.http.Patch(ctx, path, body, opts...)
}

// Delete delegates to HTTPClient.Delete.
func (a *API) Delete(ctx context.Context, path string, opts ...RequestOption) (any, error) {
	return a.http.Delete(ctx, path, opts...)
}

// GQL delegates to GraphQLClient.Request.
func (a *API) GQL(ctx context.Context, query string, variables map[string]any, opts ...RequestOption) (any, error) {
	return a.graphQL.Request(ctx, query, variables, opts...)
}
