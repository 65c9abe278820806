package client

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/internal/response"
	"github.com/lexfrei/go-apiclient/transport"
)

// ErrorHandlers are optional callbacks observed by ErrorInterceptor.
// They cannot suppress the error that follows.
type ErrorHandlers struct {
	// OnHTTPError receives the status and the decoded body text of a non-2xx response.
	OnHTTPError func(statusCode int, body string)
	// OnNetworkError receives the original transport fault.
	OnNetworkError func(err error)
}

// ErrorInterceptor turns non-2xx responses into *HTTPError and marks
// transport faults with ErrNetwork.
type ErrorInterceptor struct {
	handlers ErrorHandlers
}

// NewErrorInterceptor creates an ErrorInterceptor around handlers.
func NewErrorInterceptor(handlers ErrorHandlers) *ErrorInterceptor {
	return &ErrorInterceptor{handlers: handlers}
}

// OnRequest passes cfg through.
func (i *ErrorInterceptor) OnRequest(_ context.Context, cfg *transport.RequestConfig) (*transport.RequestConfig, error) {
	return cfg, nil
}

// OnResponse fails with *HTTPError when the status is outside [200, 300).
// An absent body is reported as "Empty response body".
func (i *ErrorInterceptor) OnResponse(_ context.Context, result *transport.RequestResult) (*transport.RequestResult, error) {
	if result.IsSuccess() {
		return result, nil
	}

	text := response.DecodeTextLossy(result.Body)

	if i.handlers.OnHTTPError != nil {
		i.handlers.OnHTTPError(result.StatusCode, text)
	}

	return nil, errors.WithStack(&HTTPError{StatusCode: result.StatusCode, Body: text})
}

// OnError reports err to OnNetworkError and replaces it with a wrap marked
// ErrNetwork. The original error stays reachable through errors.Is.
func (i *ErrorInterceptor) OnError(_ context.Context, err error) error {
	if i.handlers.OnNetworkError != nil {
		i.handlers.OnNetworkError(err)
	}

	return errors.Mark(errors.Wrap(err, "Network Error"), ErrNetwork)
}
