package cli

import (
	"encoding/json"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/transport"
	"github.com/lexfrei/go-apiclient/urlutil"
)

// parseHeaders accepts "Name: value" and "Name=value".
func parseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))

	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			name, value, ok = strings.Cut(entry, "=")
		}

		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Newf("invalid header %q, want 'Name: value'", entry)
		}

		headers[name] = strings.TrimSpace(value)
	}

	return headers, nil
}

func parseQuery(raw []string) (*urlutil.Values, error) {
	values := urlutil.NewValues()

	for _, entry := range raw {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, errors.Newf("invalid query parameter %q, want key=value", entry)
		}
		values.Append(key, value)
	}

	return values, nil
}

// readSource resolves "-" to stdin and "@path" to a file; anything else is
// taken literally.
func readSource(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(stdin)
		return data, errors.Wrap(err, "read stdin")
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		return data, errors.Wrapf(err, "read %s", arg[1:])
	default:
		return []byte(arg), nil
	}
}

// parseData decodes a JSON request body.
func parseData(arg string, stdin io.Reader) (any, error) {
	if arg == "" {
		return nil, nil
	}

	data, err := readSource(arg, stdin)
	if err != nil {
		return nil, err
	}

	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errors.Wrap(err, "request body is not valid JSON")
	}

	return body, nil
}

// parseForm turns key=path entries into multipart file parts.
func parseForm(raw []string) ([]transport.MultipartPart, error) {
	parts := make([]transport.MultipartPart, 0, len(raw))

	for _, entry := range raw {
		key, path, ok := strings.Cut(entry, "=")
		if !ok || key == "" || path == "" {
			return nil, errors.Newf("invalid form field %q, want key=path", entry)
		}

		content, err := os.ReadFile(strings.TrimPrefix(path, "@"))
		if err != nil {
			return nil, errors.Wrapf(err, "read form file for %q", key)
		}

		name := filepath.Base(strings.TrimPrefix(path, "@"))
		parts = append(parts, transport.MultipartPart{
			Key:         key,
			FileName:    name,
			Content:     content,
			ContentType: mime.TypeByExtension(filepath.Ext(name)),
		})
	}

	return parts, nil
}

// parseVariables reads GraphQL variables as name=value. Values that parse as
// JSON keep their JSON type, anything else is a string.
func parseVariables(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	vars := make(map[string]any, len(raw))

	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			return nil, errors.Newf("invalid variable %q, want name=value", entry)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		vars[name] = decoded
	}

	return vars, nil
}
