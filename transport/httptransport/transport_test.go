package httptransport_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-apiclient/internal/testutil"
	"github.com/lexfrei/go-apiclient/transport"
	"github.com/lexfrei/go-apiclient/transport/httptransport"
)

func TestRequestJSONBody(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "token", r.Header.Get("Authorization"))

		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]any{"name": "ada"}, payload)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	result, err := httptransport.New().Request(t.Context(), &transport.RequestConfig{
		URL:      server.URL + "/users",
		Method:   transport.MethodPost,
		Headers:  map[string]string{"Authorization": "token"},
		JSONBody: map[string]string{"name": "ada"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, result.StatusCode)
	assert.JSONEq(t, `{"id":1}`, string(result.Body))
}

func TestRequestKeepsConfiguredContentType(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServer(t, "/x", "Content-Type", "application/merge-patch+json",
		testutil.Response{Body: "ok", ContentType: "text/plain"})

	_, err := httptransport.New().Request(t.Context(), &transport.RequestConfig{
		URL:      server.URL + "/x",
		Method:   transport.MethodPatch,
		Headers:  map[string]string{"Content-Type": "application/merge-patch+json"},
		JSONBody: map[string]int{"n": 1},
	})
	require.NoError(t, err)
}

func TestRequestMultipart(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		files := r.MultipartForm.File["avatar"]
		if !assert.Len(t, files, 1) {
			return
		}
		assert.Equal(t, `me "1".png`, files[0].Filename)
		assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

		f, err := files[0].Open()
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()

		content, _ := io.ReadAll(f)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, content)

		docs := r.MultipartForm.File["doc"]
		if assert.Len(t, docs, 1) {
			assert.Equal(t, "application/octet-stream", docs[0].Header.Get("Content-Type"))
		}

		w.WriteHeader(http.StatusNoContent)
	})

	result, err := httptransport.New().Request(t.Context(), &transport.RequestConfig{
		URL:     server.URL + "/upload",
		Method:  transport.MethodPut,
		Headers: map[string]string{"Content-Type": "application/json"},
		Multipart: []transport.MultipartPart{
			{Key: "avatar", FileName: `me "1".png`, Content: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png"},
			{Key: "doc", FileName: "notes.bin", Content: []byte("x")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, result.StatusCode)
}

func TestRequestStatusIsNotAnError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "not found", status: http.StatusNotFound, body: `{"error":"missing"}`},
		{name: "no content", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := testutil.NewMockServer(t, "/s", "", "",
				testutil.Response{Body: tt.body, StatusCode: tt.status})

			result, err := httptransport.New().Request(t.Context(), &transport.RequestConfig{
				URL:    server.URL + "/s",
				Method: transport.MethodGet,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.status, result.StatusCode)
			assert.Equal(t, tt.body, string(result.Body))
			assert.NotNil(t, result.Body, "an empty body is still non-nil")
		})
	}
}

func TestRequestDefaultHeaders(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "apicall/test", r.Header.Get("User-Agent"))
		assert.Equal(t, "request", r.Header.Get("X-Source"), "request headers win over defaults")
		w.WriteHeader(http.StatusOK)
	})

	tr := httptransport.New(
		httptransport.WithUserAgent("apicall/test"),
		httptransport.WithHeader("X-Source", "default"),
	)

	_, err := tr.Request(t.Context(), &transport.RequestConfig{
		URL:     server.URL,
		Method:  transport.MethodGet,
		Headers: map[string]string{"X-Source": "request"},
	})
	require.NoError(t, err)
}

func TestRequestHeaderCasingIsDeterministic(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"lower"}, r.Header.Values("X-Env"))
		w.WriteHeader(http.StatusOK)
	})

	tr := httptransport.New()

	for range 20 {
		_, err := tr.Request(t.Context(), &transport.RequestConfig{
			URL:     server.URL,
			Method:  transport.MethodGet,
			Headers: map[string]string{"X-Env": "upper", "x-env": "lower"},
		})
		require.NoError(t, err)
	}
}

func TestRequestTimeout(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})

	_, err := httptransport.New().Request(t.Context(), &transport.RequestConfig{
		URL:     server.URL,
		Method:  transport.MethodGet,
		Timeout: 20 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrTransport))
}

func TestRequestUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := httptransport.New().Request(t.Context(), &transport.RequestConfig{
		URL:    url,
		Method: transport.MethodGet,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrTransport))
}

func TestRequestValidatesFirst(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	_, err := httptransport.New().Request(t.Context(), &transport.RequestConfig{
		URL:      server.URL,
		Method:   transport.MethodGet,
		JSONBody: map[string]int{"n": 1},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrInvalidRequest))
	assert.Zero(t, hits.Load())
}

func TestRequestRepeatMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		repeat     bool
		wantStatus int
		wantHits   int32
	}{
		{name: "retries when repeating", repeat: true, wantStatus: http.StatusOK, wantHits: 3},
		{name: "single attempt otherwise", repeat: false, wantStatus: http.StatusServiceUnavailable, wantHits: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"n":1}`, string(body), "the body is replayed on every attempt")

				if hits.Add(1) < 3 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				w.WriteHeader(http.StatusOK)
			})

			tr := httptransport.New(httptransport.WithRetry(3, time.Millisecond, 5*time.Millisecond))

			result, err := tr.Request(t.Context(), &transport.RequestConfig{
				URL:        server.URL,
				Method:     transport.MethodPost,
				JSONBody:   map[string]int{"n": 1},
				RepeatMode: tt.repeat,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.StatusCode)
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestRequestRepeatModeExhausted(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	tr := httptransport.New(httptransport.WithRetry(2, time.Millisecond, 2*time.Millisecond))

	result, err := tr.Request(t.Context(), &transport.RequestConfig{
		URL:        server.URL,
		Method:     transport.MethodGet,
		RepeatMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, result.StatusCode)
	assert.Equal(t, "upstream down", string(result.Body))
	assert.Equal(t, int32(3), hits.Load())
}

func TestRequestRateLimit(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServer(t, "/", "", "", testutil.Response{Body: "ok"})

	// 6000 per minute is one token every 10ms.
	tr := httptransport.New(httptransport.WithBurstRateLimit(6000, 1))

	start := time.Now()
	for range 3 {
		_, err := tr.Request(t.Context(), &transport.RequestConfig{
			URL:    server.URL + "/",
			Method: transport.MethodGet,
		})
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestRequestCustomRoundTripper(t *testing.T) {
	t.Parallel()

	var seen *http.Request
	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return &http.Response{
			StatusCode: http.StatusAccepted,
			Body:       io.NopCloser(http.NoBody),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})

	result, err := httptransport.New(httptransport.WithRoundTripper(rt)).Request(t.Context(), &transport.RequestConfig{
		URL:    "https://api.example.com/v1/ping",
		Method: transport.MethodDelete,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, result.StatusCode)
	assert.Equal(t, []byte{}, result.Body)
	require.NotNil(t, seen)
	assert.Equal(t, http.MethodDelete, seen.Method)
	assert.Equal(t, "/v1/ping", seen.URL.Path)
}

func TestRequestTLS(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := &transport.RequestConfig{URL: server.URL, Method: transport.MethodGet}

	_, err := httptransport.New().Request(t.Context(), cfg)
	require.Error(t, err, "self-signed certificates are rejected by default")

	result, err := httptransport.New(httptransport.WithInsecureSkipVerify()).Request(t.Context(), cfg)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestRequestAuthOverridesRequestHeader(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServer(t, "/secure", "X-Api-Key", "from-transport", testutil.Response{Body: "{}"})

	_, err := httptransport.New(httptransport.WithAuth("X-Api-Key", "from-transport")).
		Request(t.Context(), &transport.RequestConfig{
			URL:     server.URL + "/secure",
			Method:  transport.MethodGet,
			Headers: map[string]string{"X-Api-Key": "from-request"},
		})
	require.NoError(t, err)
}
