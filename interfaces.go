package scopebridge

import "context"

// Transport defines the interface all adapters must implement. It performs exactly one
// network exchange; non-2xx statuses are returned as responses, not errors.
type Transport interface {
	RoundTrip(ctx context.Context, req *NormalizedRequest) (*NormalizedResponse, error)
}

// Notifier receives user-visible error messages from the error side channel.
type Notifier interface {
	Notify(ctx context.Context, err *ClassifiedError)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(ctx context.Context, err *ClassifiedError)

func (f NotifierFunc) Notify(ctx context.Context, err *ClassifiedError) { f(ctx, err) }

// RequestHook runs before dispatch. The returned config replaces the in-flight one;
// a returned error aborts the call with that error.
type RequestHook func(ctx context.Context, cfg *RequestConfig) (*RequestConfig, error)

// ResponseHook runs on every 2xx response before envelope processing.
// The returned response replaces the in-flight one; a returned error rejects the call.
type ResponseHook func(ctx context.Context, cfg *RequestConfig, resp *NormalizedResponse) (*NormalizedResponse, error)

// ErrorHook decides the outcome of a failed call. Returning a non-nil Result resolves the call,
// otherwise the returned error becomes the rejection.
type ErrorHook func(ctx context.Context, cfg *RequestConfig, err *ClassifiedError) (*Result, error)
