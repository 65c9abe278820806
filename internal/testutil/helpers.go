// Package testutil provides common testing utilities and helpers.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Response is one canned reply of a mock server.
type Response struct {
	Body        string
	StatusCode  int
	ContentType string
}

// NewMockServer creates a test HTTP server with a predefined response.
// It validates the request path and, when headerName is set, that header's value.
func NewMockServer(t *testing.T, expectedPath, headerName, headerValue string, resp Response) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, expectedPath, r.URL.Path, "Request path should match expected")

		if headerName != "" {
			assert.Equal(t, headerValue, r.Header.Get(headerName), "%s header should be set", headerName)
		}

		writeResponse(t, w, resp)
	}))
	t.Cleanup(server.Close)

	return server
}

// NewMockServerWithHandler creates a test HTTP server with a custom handler.
func NewMockServerWithHandler(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

// NewMockServerMulti creates a test HTTP server with multiple path handlers.
// The handlers map keys are URL paths, values are handler functions.
func NewMockServerMulti(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	return NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	})
}

// NewMockServerSequence creates a test server that returns responses in sequence.
// Useful for testing retry logic.
func NewMockServerSequence(t *testing.T, responses []Response) *httptest.Server {
	t.Helper()

	var (
		mu        sync.Mutex
		callCount int
	)

	return NewMockServerWithHandler(t, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		index := callCount
		callCount++
		mu.Unlock()

		if index >= len(responses) {
			t.Errorf("More requests than configured responses (got %d requests, have %d responses)",
				index+1, len(responses))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeResponse(t, w, responses[index])
	})
}

func writeResponse(t *testing.T, w http.ResponseWriter, resp Response) {
	t.Helper()

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if resp.Body != "" {
		_, err := w.Write([]byte(resp.Body))
		require.NoError(t, err, "Failed to write response body")
	}
}
