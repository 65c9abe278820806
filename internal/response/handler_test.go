package response_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-apiclient/internal/response"
)

func TestDecodeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body []byte
		want string
	}{
		{name: "ascii", body: []byte("plain text"), want: "plain text"},
		{name: "multibyte", body: []byte("héllo wörld ✓"), want: "héllo wörld ✓"},
		{name: "byte order mark stripped", body: []byte("\xef\xbb\xbfhello"), want: "hello"},
		{name: "empty", body: []byte{}, want: ""},
		{name: "nil", body: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := response.DecodeText(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTextInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := response.DecodeText([]byte{0xff, 0xfe, 'a'})
	require.Error(t, err)
	assert.True(t, errors.Is(err, response.ErrDecode))
}

func TestDecodeTextLossy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, response.EmptyBodyText, response.DecodeTextLossy(nil))
	assert.Equal(t, "", response.DecodeTextLossy([]byte{}))
	assert.Equal(t, "not found", response.DecodeTextLossy([]byte("not found")))
	assert.Equal(t, "a�b", response.DecodeTextLossy([]byte{'a', 0xff, 'b'}))
}

func TestDecodeJSONOrText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want any
	}{
		{name: "object", body: `{"id":1,"name":"x"}`, want: map[string]any{"id": float64(1), "name": "x"}},
		{name: "array", body: `[1,2]`, want: []any{float64(1), float64(2)}},
		{name: "string literal", body: `"quoted"`, want: "quoted"},
		{name: "plain text falls back", body: "plain text", want: "plain text"},
		{name: "empty body is empty text", body: "", want: ""},
		{name: "truncated JSON falls back", body: `{"id":`, want: `{"id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := response.DecodeJSONOrText([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSONOrTextInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := response.DecodeJSONOrText([]byte{0xc3, 0x28})
	assert.True(t, errors.Is(err, response.ErrDecode))
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		var out struct {
			Data map[string]int `json:"data"`
		}
		require.NoError(t, response.DecodeJSON([]byte(`{"data":{"n":3}}`), &out))
		assert.Equal(t, 3, out.Data["n"])
	})

	t.Run("not JSON", func(t *testing.T) {
		t.Parallel()

		var out map[string]any
		err := response.DecodeJSON([]byte("<html>bad gateway</html>"), &out)
		require.Error(t, err)
		assert.True(t, errors.Is(err, response.ErrInvalidJSON))
		assert.Contains(t, err.Error(), "<html>bad gateway</html>")
	})

	t.Run("type mismatch is InvalidJSON", func(t *testing.T) {
		t.Parallel()

		var out struct {
			Data int `json:"data"`
		}
		err := response.DecodeJSON([]byte(`{"data":"text"}`), &out)
		require.Error(t, err)
		assert.True(t, errors.Is(err, response.ErrInvalidJSON))
		assert.Contains(t, err.Error(), "unmarshal JSON response")
	})
}
