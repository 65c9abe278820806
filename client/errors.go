package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/internal/response"
)

var (
	// ErrEmptyResponse is returned when a body was expected but the transport reported none.
	ErrEmptyResponse = errors.New("empty response")

	// ErrDecode is returned when body bytes are not valid UTF-8 text.
	ErrDecode = response.ErrDecode

	// ErrInvalidJSON is returned by GraphQL calls whose response is not JSON
	// or does not fit the response envelope.
	ErrInvalidJSON = response.ErrInvalidJSON

	// ErrNoData is returned when a GraphQL response has neither errors nor data.
	ErrNoData = errors.New("no data in GraphQL response")

	// ErrConfiguration is returned when a builder cannot produce a client.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidQuery is returned for a blank or unparsable GraphQL document.
	ErrInvalidQuery = errors.New("invalid GraphQL query")

	// ErrNetwork marks transport faults that passed through ErrorInterceptor.
	ErrNetwork = errors.New("network error")
)

// HTTPError is raised by ErrorInterceptor for responses outside the 2xx range.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Location is a line/column position inside a GraphQL document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLErrorItem is one entry of a response's errors array.
type GraphQLErrorItem struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// PathString joins the path segments with dots.
func (i GraphQLErrorItem) PathString() string {
	parts := make([]string, 0, len(i.Path))
	for _, segment := range i.Path {
		switch v := segment.(type) {
		case string:
			parts = append(parts, v)
		case float64:
			parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, ".")
}

// GraphQLError reports the first error of a GraphQL response.
// Further errors are left out; GraphQLClient.Envelope exposes all of them.
type GraphQLError struct {
	// Details is the composite message built from First.
	Details string
	First   GraphQLErrorItem
}

func newGraphQLError(item GraphQLErrorItem) *GraphQLError {
	var b strings.Builder
	b.WriteString(item.Message)

	if len(item.Path) > 0 {
		b.WriteString(" | Path: ")
		b.WriteString(item.PathString())
	}

	if len(item.Locations) > 0 {
		loc := item.Locations[0]
		fmt.Fprintf(&b, " | Location: line %d, column %d", loc.Line, loc.Column)
	}

	return &GraphQLError{Details: b.String(), First: item}
}

func (e *GraphQLError) Error() string {
	return "GraphQL Error: " + e.Details
}
