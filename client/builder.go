package client

import (
	"maps"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/transport"
)

// Kind selects the client Builder.Build produces.
type Kind int

// Client kinds. The zero value means no kind was chosen.
const (
	KindUnset Kind = iota
	KindHTTP
	KindGraphQL
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindGraphQL:
		return "graphql"
	default:
		return "unset"
	}
}

// Client is the surface shared by every client Builder.Build returns.
type Client interface {
	Use(interceptor Interceptor) *Executor
	SetHeader(key, value string) *Executor
	RemoveHeader(key string) *Executor
	Config() Config
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*GraphQLClient)(nil)
)

// Builder accumulates client configuration.
// Each terminal call copies the configuration, so a Builder can produce
// several independent clients.
type Builder struct {
	transport      transport.Transport
	cfg            Config
	kind           Kind
	handlers       *ErrorHandlers
	interceptors   []Interceptor
	graphQLOptions []GraphQLOption
}

// NewBuilder starts a builder for clients that send requests through tr.
func NewBuilder(tr transport.Transport) *Builder {
	return &Builder{
		transport: tr,
		cfg:       Config{Headers: map[string]string{}},
	}
}

// WithBaseURL sets the base URL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.cfg.BaseURL = baseURL
	return b
}

// WithHeaders merges headers into the default headers.
func (b *Builder) WithHeaders(headers map[string]string) *Builder {
	for key, value := range headers {
		transport.SetHeader(b.cfg.Headers, key, value)
	}
	return b
}

// WithHeader sets one default header.
func (b *Builder) WithHeader(key, value string) *Builder {
	transport.SetHeader(b.cfg.Headers, key, value)
	return b
}

// WithTimeout sets the default request timeout.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.cfg.Timeout = timeout
	return b
}

// WithAuth sets the Authorization header to token as given,
// e.g. "Bearer abc".
func (b *Builder) WithAuth(token string) *Builder {
	return b.WithHeader("Authorization", token)
}

// WithRepeatMode sets the default repeat mode.
func (b *Builder) WithRepeatMode(enabled bool) *Builder {
	b.cfg.RepeatMode = enabled
	return b
}

// WithErrorHandling attaches an ErrorInterceptor built from handlers to every
// client produced afterwards. Both callbacks may be nil.
func (b *Builder) WithErrorHandling(handlers ErrorHandlers) *Builder {
	b.handlers = &handlers
	return b
}

// WithClient selects the kind Build produces.
func (b *Builder) WithClient(kind Kind) *Builder {
	b.kind = kind
	return b
}

// WithInterceptor appends an interceptor installed after the ErrorInterceptor.
// Nil interceptors are ignored.
func (b *Builder) WithInterceptor(interceptor Interceptor) *Builder {
	if !isNilInterceptor(interceptor) {
		b.interceptors = append(b.interceptors, interceptor)
	}
	return b
}

// WithGraphQLOptions adds options for GraphQL clients.
func (b *Builder) WithGraphQLOptions(opts ...GraphQLOption) *Builder {
	b.graphQLOptions = append(b.graphQLOptions, opts...)
	return b
}

// Build creates the client kind selected with WithClient. It fails with
// ErrConfiguration when no kind was selected.
//
//nolint:ireturn // The concrete type depends on the selected kind
func (b *Builder) Build() (Client, error) {
	if b.transport == nil {
		return nil, errors.Mark(errors.New("builder has no transport"), ErrConfiguration)
	}

	switch b.kind {
	case KindHTTP:
		return b.BuildHTTP(), nil
	case KindGraphQL:
		return b.BuildGraphQL(), nil
	case KindUnset:
		return nil, errors.Mark(errors.New("no client kind selected, call WithClient first"), ErrConfiguration)
	default:
		return nil, errors.Mark(errors.Newf("unknown client kind %d", int(b.kind)), ErrConfiguration)
	}
}

// BuildHTTP creates a REST client.
func (b *Builder) BuildHTTP() *HTTPClient {
	c := NewHTTPClient(b.snapshot(), b.transport)
	b.attach(c.Executor)
	return c
}

// BuildGraphQL creates a GraphQL client.
func (b *Builder) BuildGraphQL() *GraphQLClient {
	c := NewGraphQLClient(b.snapshot(), b.transport, b.graphQLOptions...)
	b.attach(c.Executor)
	return c
}

// BuildAPI creates a facade whose REST and GraphQL delegates share one
// header store. No kind selection is needed.
func (b *Builder) BuildAPI() *API {
	api := NewAPI(b.snapshot(), b.transport, b.graphQLOptions...)
	b.attach(api.http.Executor)
	b.attach(api.graphQL.Executor)
	return api
}

func (b *Builder) snapshot() Config {
	cfg := b.cfg
	cfg.Headers = maps.Clone(b.cfg.Headers)
	return cfg
}

func (b *Builder) attach(executor *Executor) {
	if b.handlers != nil {
		executor.Use(NewErrorInterceptor(*b.handlers))
	}

	for _, interceptor := range b.interceptors {
		executor.Use(interceptor)
	}
}
