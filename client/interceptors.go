package client

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/lexfrei/go-apiclient/observability"
	"github.com/lexfrei/go-apiclient/transport"
)

// RequestIDHeader is the header NewRequestIDInterceptor fills in.
const RequestIDHeader = "X-Request-ID"

// NewLoggingInterceptor logs every request, response and transport fault.
// It changes nothing and never fails.
func NewLoggingInterceptor(logger observability.Logger) *InterceptorFuncs {
	logger = observability.OrNoop(logger)

	return &InterceptorFuncs{
		Request: func(_ context.Context, cfg *transport.RequestConfig) (*transport.RequestConfig, error) {
			logger.Debug("api request",
				observability.F("method", cfg.Method.String()),
				observability.F("url", cfg.URL),
				observability.F("timeout", cfg.Timeout),
				observability.F("repeat_mode", cfg.RepeatMode),
			)
			return cfg, nil
		},
		Response: func(_ context.Context, result *transport.RequestResult) (*transport.RequestResult, error) {
			fields := []observability.Field{
				observability.F("status", result.StatusCode),
				observability.F("body_bytes", len(result.Body)),
			}
			if result.IsSuccess() {
				logger.Debug("api response", fields...)
			} else {
				logger.Warn("api response with error status", fields...)
			}
			return result, nil
		},
		Error: func(_ context.Context, err error) error {
			logger.Error("api transport failure", observability.F("error", err.Error()))
			return nil
		},
	}
}

// NewRequestIDInterceptor sets X-Request-ID to a random UUID on requests
// that do not carry one.
func NewRequestIDInterceptor() *InterceptorFuncs {
	return &InterceptorFuncs{
		Request: func(_ context.Context, cfg *transport.RequestConfig) (*transport.RequestConfig, error) {
			if id, _ := transport.LookupHeader(cfg.Headers, RequestIDHeader); id != "" {
				return cfg, nil
			}

			out := cfg.Clone()
			transport.SetHeader(out.Headers, RequestIDHeader, uuid.NewString())
			return out, nil
		},
	}
}

// NewOAuth2Interceptor sets the Authorization header from source on every
// request. The source is expected to cache tokens, as oauth2.ReuseTokenSource does.
func NewOAuth2Interceptor(source oauth2.TokenSource) *InterceptorFuncs {
	return &InterceptorFuncs{
		Request: func(_ context.Context, cfg *transport.RequestConfig) (*transport.RequestConfig, error) {
			token, err := source.Token()
			if err != nil {
				return nil, errors.Wrap(err, "obtain OAuth2 token")
			}

			out := cfg.Clone()
			transport.SetHeader(out.Headers, "Authorization", token.Type()+" "+token.AccessToken)
			return out, nil
		},
	}
}
