package client

import (
	"context"

	"github.com/lexfrei/go-apiclient/transport"
)

// Interceptor hooks into every request an Executor performs.
//
// OnRequest and OnResponse are folds: each hook receives the previous hook's
// output and returning an error stops the chain. OnError sees the original
// transport fault; returning nil re-raises it and returning a non-nil error
// replaces it.
type Interceptor interface {
	OnRequest(ctx context.Context, cfg *transport.RequestConfig) (*transport.RequestConfig, error)
	OnResponse(ctx context.Context, result *transport.RequestResult) (*transport.RequestResult, error)
	OnError(ctx context.Context, err error) error
}

// InterceptorFuncs builds an Interceptor from optional functions.
// A nil field is a no-op.
type InterceptorFuncs struct {
	Request  func(ctx context.Context, cfg *transport.RequestConfig) (*transport.RequestConfig, error)
	Response func(ctx context.Context, result *transport.RequestResult) (*transport.RequestResult, error)
	Error    func(ctx context.Context, err error) error
}

// OnRequest implements Interceptor.
func (f InterceptorFuncs) OnRequest(ctx context.Context, cfg *transport.RequestConfig) (*transport.RequestConfig, error) {
	if f.Request == nil {
		return cfg, nil
	}
	return f.Request(ctx, cfg)
}

// OnResponse implements Interceptor.
func (f InterceptorFuncs) OnResponse(ctx context.Context, result *transport.RequestResult) (*transport.RequestResult, error) {
	if f.Response == nil {
		return result, nil
	}
	return f.Response(ctx, result)
}

// OnError implements Interceptor.
func (f InterceptorFuncs) OnError(ctx context.Context, err error) error {
	if f.Error == nil {
		return nil
	}
	return f.Error(ctx, err)
}
