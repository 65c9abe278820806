package client_test

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-apiclient/client"
	"github.com/lexfrei/go-apiclient/internal/testutil"
)

type httpErrorCall struct {
	status int
	body   string
}

func TestErrorInterceptorHTTPError(t *testing.T) {
	t.Parallel()

	var calls []httpErrorCall
	c := newHTTPClient(testutil.NewFakeTransport().ReplyText(http.StatusNotFound, "user not found"))
	c.Use(client.NewErrorInterceptor(client.ErrorHandlers{
		OnHTTPError: func(status int, body string) {
			calls = append(calls, httpErrorCall{status: status, body: body})
		},
	}))

	_, err := c.Get(t.Context(), "/users/404")
	require.Error(t, err)

	assert.Equal(t, []httpErrorCall{{status: http.StatusNotFound, body: "user not found"}}, calls)

	var httpErr *client.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "user not found", httpErr.Body)
	assert.Equal(t, "HTTP 404: user not found", httpErr.Error())
}

func TestErrorInterceptorEmptyBody(t *testing.T) {
	t.Parallel()

	var got string
	c := newHTTPClient(testutil.NewFakeTransport().Reply(http.StatusServiceUnavailable, nil))
	c.Use(client.NewErrorInterceptor(client.ErrorHandlers{
		OnHTTPError: func(_ int, body string) { got = body },
	}))

	_, err := c.Get(t.Context(), "/x")

	var httpErr *client.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "Empty response body", httpErr.Body)
	assert.Equal(t, "Empty response body", got)
}

func TestErrorInterceptorWithoutCallbacksStillRaises(t *testing.T) {
	t.Parallel()

	c := newHTTPClient(testutil.NewFakeTransport().ReplyText(http.StatusInternalServerError, "boom"))
	c.Use(client.NewErrorInterceptor(client.ErrorHandlers{}))

	_, err := c.Get(t.Context(), "/x")

	var httpErr *client.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

func TestErrorInterceptorPassesSuccess(t *testing.T) {
	t.Parallel()

	called := false
	c := newHTTPClient(testutil.NewFakeTransport().ReplyText(http.StatusCreated, `{"ok":true}`))
	c.Use(client.NewErrorInterceptor(client.ErrorHandlers{
		OnHTTPError: func(int, string) { called = true },
	}))

	value, err := c.Post(t.Context(), "/x", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, value)
	assert.False(t, called)
}

func TestErrorInterceptorNetworkError(t *testing.T) {
	t.Parallel()

	fault := errors.New("connection reset by peer")

	var seen []error
	c := newHTTPClient(testutil.NewFakeTransport().Fail(fault))
	c.Use(client.NewErrorInterceptor(client.ErrorHandlers{
		OnNetworkError: func(err error) { seen = append(seen, err) },
	}))

	_, err := c.Get(t.Context(), "/x")
	require.Error(t, err)

	require.Len(t, seen, 1)
	assert.Same(t, fault, seen[0])
	assert.True(t, errors.Is(err, client.ErrNetwork))
	assert.True(t, errors.Is(err, fault), "original error stays reachable")
	assert.Contains(t, err.Error(), "Network Error")
}

func TestErrorInterceptorOnGraphQL(t *testing.T) {
	t.Parallel()

	c := newGraphQLClient(testutil.NewFakeTransport().ReplyText(http.StatusUnauthorized, `{"errors":[{"message":"no"}]}`))
	c.Use(client.NewErrorInterceptor(client.ErrorHandlers{}))

	_, err := c.Request(t.Context(), "{ a }", nil)

	var httpErr *client.HTTPError
	require.True(t, errors.As(err, &httpErr), "status classification runs before envelope parsing")
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}
