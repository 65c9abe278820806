// Package httptransport implements transport.Transport on net/http.
//
// Requests pass through a RoundTripper middleware chain:
//
//	Observability -> Headers -> Auth -> RateLimit -> [Retry] -> TLS -> net/http
//
// Retry is only part of the chain for requests with RepeatMode set.
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/internal/httpclient"
	"github.com/lexfrei/go-apiclient/internal/middleware"
	"github.com/lexfrei/go-apiclient/internal/ratelimit"
	"github.com/lexfrei/go-apiclient/transport"
)

const (
	defaultMaxRetries  = 3
	defaultInitialWait = 500 * time.Millisecond
	defaultMaxWait     = 10 * time.Second
)

// Transport sends RequestConfig values over HTTP.
type Transport struct {
	plain     *httpclient.Client
	repeating *httpclient.Client
}

var _ transport.Transport = (*Transport)(nil)

// New creates a Transport.
func New(opts ...Option) *Transport {
	o := &options{
		retry: middleware.RetryConfig{
			MaxRetries:  defaultMaxRetries,
			InitialWait: defaultInitialWait,
			MaxWait:     defaultMaxWait,
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	chain := []httpclient.Middleware{middleware.Observability(o.logger, o.metrics)}

	if len(o.headers) > 0 {
		chain = append(chain, middleware.Headers(o.headers, false))
	}

	for name, value := range o.auth {
		chain = append(chain, middleware.Auth(name, value))
	}

	if limiter := ratelimit.NewBurstLimiter(o.requestsPerMinute, o.burst); limiter != nil {
		chain = append(chain, middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: limiter,
			Logger:  o.logger,
			Metrics: o.metrics,
		}))
	}

	retryCfg := o.retry
	retryCfg.Logger = o.logger
	retryCfg.Metrics = o.metrics

	plain := httpclient.New(
		httpclient.WithHTTPClient(o.httpClient),
		httpclient.WithTransport(o.roundTripper),
		httpclient.WithMiddleware(chain...),
		httpclient.WithMiddleware(o.tlsMiddleware()),
	)

	repeating := httpclient.New(
		httpclient.WithHTTPClient(o.httpClient),
		httpclient.WithTransport(o.roundTripper),
		httpclient.WithMiddleware(chain...),
		httpclient.WithMiddleware(middleware.Retry(retryCfg), o.tlsMiddleware()),
	)

	return &Transport{plain: plain, repeating: repeating}
}

// Request implements transport.Transport. Status codes are returned as is;
// only failures to complete the exchange are errors, marked
// transport.ErrTransport. The returned body is never nil.
func (t *Transport) Request(ctx context.Context, cfg *transport.RequestConfig) (*transport.RequestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := newRequest(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := t.plain
	if cfg.RepeatMode {
		client = t.repeating
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s %s", cfg.Method, req.URL.Redacted()), transport.ErrTransport)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read response body"), transport.ErrTransport)
	}
	if body == nil {
		body = []byte{}
	}

	return &transport.RequestResult{StatusCode: resp.StatusCode, Body: body}, nil
}

func newRequest(ctx context.Context, cfg *transport.RequestConfig) (*http.Request, error) {
	var (
		body        io.Reader = http.NoBody
		contentType string
	)

	switch {
	case cfg.JSONBody != nil:
		payload, err := json.Marshal(cfg.JSONBody)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "encode JSON body"), transport.ErrInvalidRequest)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"

	case len(cfg.Multipart) > 0:
		payload, boundaryType, err := encodeMultipart(cfg.Multipart)
		if err != nil {
			return nil, err
		}
		body = payload
		contentType = boundaryType
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method.String(), cfg.URL, body)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "build request"), transport.ErrInvalidRequest)
	}

	// Sorted so that keys differing only in case resolve the same way every time.
	for _, name := range slices.Sorted(maps.Keys(cfg.Headers)) {
		req.Header.Set(name, cfg.Headers[name])
	}

	switch {
	case len(cfg.Multipart) > 0:
		// The boundary is only known here, so a configured Content-Type cannot apply.
		req.Header.Set("Content-Type", contentType)
	case contentType != "" && req.Header.Get("Content-Type") == "":
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

func encodeMultipart(parts []transport.MultipartPart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, part := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(part.Key)+`"; filename="`+escapeQuotes(part.FileName)+`"`)

		contentType := part.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		w, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", errors.Wrapf(err, "create part %q", part.Key)
		}
		if _, err := w.Write(part.Content); err != nil {
			return nil, "", errors.Wrapf(err, "write part %q", part.Key)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart body")
	}

	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
