// Package response decodes raw response bodies into text and JSON values.
package response

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrDecode marks a body whose bytes are not valid UTF-8 text.
	ErrDecode = errors.New("response body is not valid UTF-8")

	// ErrInvalidJSON marks a body that decoded as text but is not JSON.
	ErrInvalidJSON = errors.New("invalid JSON response")
)

// EmptyBodyText stands in for an absent body in error messages.
const EmptyBodyText = "Empty response body"

// DecodeText decodes body as UTF-8, dropping a leading byte order mark.
// Invalid UTF-8 fails with ErrDecode.
func DecodeText(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", errors.Mark(errors.Newf("%d bytes with invalid UTF-8 sequences", len(body)), ErrDecode)
	}

	return decode(body)
}

// DecodeTextLossy decodes body as UTF-8 replacing invalid sequences with
// U+FFFD. A nil body yields EmptyBodyText.
func DecodeTextLossy(body []byte) string {
	if body == nil {
		return EmptyBodyText
	}

	text, err := decode(body)
	if err != nil {
		return string(bytes.ToValidUTF8(body, []byte("�")))
	}

	return text
}

func decode(body []byte) (string, error) {
	if len(body) == 0 {
		return "", nil
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), body)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "decode response body"), ErrDecode)
	}

	return string(out), nil
}

// DecodeJSONOrText decodes body as text and returns the parsed JSON value,
// or the text itself when it is not JSON. Only a text decoding failure is
// an error.
func DecodeJSONOrText(body []byte) (any, error) {
	text, err := DecodeText(body)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return text, nil //nolint:nilerr // Non-JSON bodies are returned verbatim
	}

	return value, nil
}

// DecodeJSON decodes body as text and unmarshals it into target.
// A body that is not JSON fails with ErrInvalidJSON carrying the raw text.
// JSON whose shape does not fit target is also marked ErrInvalidJSON.
func DecodeJSON(body []byte, target any) error {
	text, err := DecodeText(body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(text), target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return errors.Mark(errors.Wrap(err, "unmarshal JSON response"), ErrInvalidJSON)
		}

		return errors.Mark(errors.Newf("Invalid JSON response: %s", text), ErrInvalidJSON)
	}

	return nil
}
