package client_test

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-apiclient/client"
	"github.com/lexfrei/go-apiclient/internal/testutil"
	"github.com/lexfrei/go-apiclient/transport"
)

func TestAPISharesHeaders(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeTransport().
		ReplyText(http.StatusOK, `{"id":1}`).
		ReplyText(http.StatusOK, `{"data":{"ok":true}}`)

	api := client.NewBuilder(fake).
		WithBaseURL("https://api.example.com").
		WithAuth("Bearer old").
		BuildAPI()

	api.SetHeader("Authorization", "Bearer new")
	api.HTTP().SetHeader("X-Via", "http")

	_, err := api.Get(t.Context(), "/users/1")
	require.NoError(t, err)

	_, err = api.GQL(t.Context(), "{ ok }", nil)
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 2)

	for _, call := range calls {
		assert.Equal(t, "Bearer new", call.Headers["Authorization"])
		assert.Equal(t, "http", call.Headers["X-Via"], "a header set on one delegate is seen by both")
	}

	assert.Equal(t, "application/json", calls[0].Headers["Content-Type"], "the GraphQL Content-Type lives in the shared store")
	assert.Equal(t, transport.MethodGet, calls[0].Method)
	assert.Equal(t, "https://api.example.com/users/1", calls[0].URL)
	assert.Equal(t, transport.MethodPost, calls[1].Method)
	assert.Equal(t, "https://api.example.com", calls[1].URL)
}

func TestAPIRemoveHeader(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeTransport().ReplyText(http.StatusOK, "ok")
	api := client.NewAPI(client.Config{
		BaseURL: "https://api.example.com",
		Headers: map[string]string{"X-Debug": "1"},
	}, fake)

	api.RemoveHeader("X-Debug")

	_, err := api.Delete(t.Context(), "/x")
	require.NoError(t, err)

	_, ok := fake.LastCall().Headers["X-Debug"]
	assert.False(t, ok)
}

func TestAPIVerbs(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeTransport().ReplyText(http.StatusOK, `"ok"`)
	api := client.NewAPI(client.Config{BaseURL: "https://api.example.com"}, fake)

	body := client.JSONBody(map[string]int{"n": 1})

	for _, call := range []func() (any, error){
		func() (any, error) { return api.Post(t.Context(), "/p", body) },
		func() (any, error) { return api.Put(t.Context(), "/p", body) },
		func() (any, error) { return api.Patch(t.Context(), "/p", body) },
	} {
		value, err := call()
		require.NoError(t, err)
		assert.Equal(t, "ok", value)
	}

	data, err := api.GetFile(t.Context(), "/f")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"ok"`), data)

	var methods []transport.Method
	for _, call := range fake.Calls() {
		methods = append(methods, call.Method)
	}
	assert.Equal(t, []transport.Method{
		transport.MethodPost, transport.MethodPut, transport.MethodPatch, transport.MethodGet,
	}, methods)
}

func TestAPIUseAppliesToBoth(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeTransport().ReplyText(http.StatusBadRequest, "bad")
	api := client.NewAPI(client.Config{BaseURL: "https://api.example.com"}, fake)

	var hits int
	api.Use(client.NewErrorInterceptor(client.ErrorHandlers{
		OnHTTPError: func(int, string) { hits++ },
	}))

	_, err := api.Get(t.Context(), "/x")
	require.Error(t, err)

	_, err = api.GQL(t.Context(), "{ a }", nil)
	require.Error(t, err)

	var httpErr *client.HTTPError
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 2, hits)
}

func TestBuildAPIAttachesErrorHandlingOnce(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeTransport().ReplyText(http.StatusInternalServerError, "down")

	var hits int
	api := client.NewBuilder(fake).
		WithBaseURL("https://api.example.com").
		WithErrorHandling(client.ErrorHandlers{OnHTTPError: func(int, string) { hits++ }}).
		BuildAPI()

	_, err := api.Get(t.Context(), "/x")
	require.Error(t, err)
	assert.Equal(t, 1, hits)
}
