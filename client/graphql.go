package client

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/lexfrei/go-apiclient/internal/response"
	"github.com/lexfrei/go-apiclient/transport"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeQuery collapses every whitespace run to one space and trims the
// ends. Whitespace inside string literals is collapsed as well.
func NormalizeQuery(query string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(query, " "))
}

// Envelope is a decoded GraphQL response.
type Envelope struct {
	Data       json.RawMessage    `json:"data,omitempty"`
	Errors     []GraphQLErrorItem `json:"errors,omitempty"`
	Extensions map[string]any     `json:"extensions,omitempty"`
}

// HasData reports whether the envelope carries a non-null data member.
func (e *Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

type graphQLPayload struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// GraphQLOption configures a GraphQLClient.
type GraphQLOption func(*GraphQLClient)

// WithQueryValidation parses each document before sending it and fails with
// ErrInvalidQuery on syntax errors.
func WithQueryValidation() GraphQLOption {
	return func(c *GraphQLClient) {
		c.validate = true
	}
}

// GraphQLClient posts GraphQL documents and unwraps the response envelope.
//
// Requests go to the base URL unless WithPath names another endpoint.
// Variables are always sent; nil variables are sent as an empty object.
type GraphQLClient struct {
	*Executor

	validate bool
}

// NewGraphQLClient creates a GraphQL client. Content-Type is set to
// application/json on the client's headers.
func NewGraphQLClient(cfg Config, tr transport.Transport, opts ...GraphQLOption) *GraphQLClient {
	return newGraphQLClient(NewExecutor(cfg, tr), opts)
}

func newGraphQLClient(executor *Executor, opts []GraphQLOption) *GraphQLClient {
	c := &GraphQLClient{Executor: executor}
	c.SetHeader("Content-Type", "application/json")

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Request sends query with variables and returns the decoded data member.
//
// The first entry of a non-empty errors array becomes a *GraphQLError.
// A response without data fails with ErrNoData.
func (c *GraphQLClient) Request(ctx context.Context, query string, variables map[string]any, opts ...RequestOption) (any, error) {
	return Query[any](ctx, c, query, variables, opts...)
}

// GQL is an alias for Request.
func (c *GraphQLClient) GQL(ctx context.Context, query string, variables map[string]any, opts ...RequestOption) (any, error) {
	return c.Request(ctx, query, variables, opts...)
}

// Envelope sends query with variables and returns the whole response
// envelope without interpreting its errors array.
func (c *GraphQLClient) Envelope(ctx context.Context, query string, variables map[string]any, opts ...RequestOption) (*Envelope, error) {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return nil, errors.Mark(errors.New("GraphQL query is empty"), ErrInvalidQuery)
	}

	if c.validate {
		if err := validateQuery(normalized); err != nil {
			return nil, err
		}
	}

	if variables == nil {
		variables = map[string]any{}
	}

	o := applyOptions(opts)

	target := c.BaseURL()
	if o.path != nil {
		target = c.BuildURL(*o.path)
	}

	url, err := o.withQuery(target)
	if err != nil {
		return nil, err
	}

	req := o.request(url, transport.MethodPost, &Body{JSON: graphQLPayload{Query: normalized, Variables: variables}})

	result, err := c.Execute(ctx, c.MergeConfig(req))
	if err != nil {
		return nil, err
	}

	if result.Body == nil {
		return nil, errors.Mark(errors.Newf("no body in GraphQL response with status %d", result.StatusCode), ErrEmptyResponse)
	}

	var envelope Envelope
	if err := response.DecodeJSON(result.Body, &envelope); err != nil {
		return nil, err
	}

	return &envelope, nil
}

// Query sends query and decodes the data member into T.
func Query[T any](ctx context.Context, c *GraphQLClient, query string, variables map[string]any, opts ...RequestOption) (T, error) {
	var out T

	envelope, err := c.Envelope(ctx, query, variables, opts...)
	if err != nil {
		return out, err
	}

	if len(envelope.Errors) > 0 {
		return out, newGraphQLError(envelope.Errors[0])
	}

	if !envelope.HasData() {
		return out, errors.WithStack(ErrNoData)
	}

	if err := json.Unmarshal(envelope.Data, &out); err != nil {
		return out, errors.Wrap(err, "decode GraphQL data")
	}

	return out, nil
}

func validateQuery(query string) error {
	_, err := parser.ParseQuery(&ast.Source{Input: query})
	if err == nil {
		return nil
	}

	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) && len(gqlErr.Locations) > 0 {
		loc := gqlErr.Locations[0]
		return errors.Mark(
			errors.Newf("%s (line %d, column %d)", gqlErr.Message, loc.Line, loc.Column),
			ErrInvalidQuery,
		)
	}

	return errors.Mark(errors.Wrap(err, "parse GraphQL query"), ErrInvalidQuery)
}
