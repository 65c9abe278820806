// Package client provides REST and GraphQL clients over a pluggable host
// transport.
//
// Every client embeds an Executor that owns the base URL, default headers,
// timeout and repeat mode, and an ordered interceptor pipeline. A request is
// resolved against the defaults, passed through each interceptor's OnRequest
// hook, handed to the transport, and the result is passed through each
// OnResponse hook. HTTP status codes are plain values: a 500 response is
// returned to the caller unchanged unless an interceptor such as
// ErrorInterceptor raises on it.
//
// # Building clients
//
//	api := client.NewBuilder(httptransport.New()).
//		WithBaseURL("https://api.example.com").
//		WithAuth("Bearer " + token).
//		WithErrorHandling(client.ErrorHandlers{}).
//		BuildAPI()
//
//	user, err := api.Get(ctx, "/users/1")
//	data, err := api.GQL(ctx, "query { viewer { id } }", nil)
//
// # Errors
//
// Failures carry cockroachdb/errors marks and can be tested with errors.Is:
// ErrEmptyResponse, ErrDecode, ErrInvalidJSON, ErrNoData, ErrInvalidQuery,
// ErrConfiguration and ErrNetwork. Status and GraphQL failures are typed
// (*HTTPError, *GraphQLError) and can be unwrapped with errors.As.
//
// # Concurrency
//
// Clients are not synchronised. Drive a client from one call sequence at a
// time, or stop changing its headers and interceptors before sharing it.
package client
