// sdk.go
// ------
// The sdk.go file contains the core Bridge struct and its methods.
// This is the main entry point of the SDK for users.
//
// Key functionalities include:
// - Initializing the bridge with NewBridge()
// - Registering request, response and error hooks with Use*()
// - Making calls via Request() and the Get/Post/Put/Delete/Download wrappers
// - Decoding envelope payloads into typed values with Do[T]()
//
// The Bridge relies on a Throttler and a RequestExecutor, ensuring consistent pre-flight,
// dispatch and post-flight behavior for every call.
package scopebridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// DefaultRequestIDHeader carries the per-call correlation id.
const DefaultRequestIDHeader = "X-Request-ID"

type Bridge struct {
	mu sync.Mutex

	config          ClientConfig
	transport       Transport
	notifier        Notifier
	tokenSource     oauth2.TokenSource
	requestIDHeader string
	logger          *slog.Logger

	requestHooks  []RequestHook
	responseHooks []ResponseHook
	errorHooks    []ErrorHook

	loading   *LoadingCounter
	throttler *Throttler
	executor  *RequestExecutor
}

// NewBridge creates a Bridge dispatching through transport, starting from DefaultClientConfig().
func NewBridge(transport Transport, opts ...Option) (*Bridge, error) {
	if transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	b := &Bridge{
		config:          DefaultClientConfig(),
		transport:       transport,
		requestIDHeader: DefaultRequestIDHeader,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		loading:         &loading,
		throttler:       NewThrottler(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	if b.config.ThrottleInterval <= 0 {
		b.config.ThrottleInterval = DefaultThrottleInterval
	}

	b.executor = NewRequestExecutor(b)
	return b, nil
}

// UseRequest appends request hooks. Hooks run in registration order.
func (b *Bridge) UseRequest(hooks ...RequestHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requestHooks = append(b.requestHooks, hooks...)
}

// UseResponse appends response hooks. Hooks run in registration order.
func (b *Bridge) UseResponse(hooks ...ResponseHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responseHooks = append(b.responseHooks, hooks...)
}

// UseError appends error hooks. Hooks run in registration order until one resolves the call.
func (b *Bridge) UseError(hooks ...ErrorHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errorHooks = append(b.errorHooks, hooks...)
}

// SetTokenSource replaces the token source, e.g. after a login.
func (b *Bridge) SetTokenSource(ts oauth2.TokenSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenSource = ts
}

// Config returns a copy of the bridge defaults.
func (b *Bridge) Config() ClientConfig {
	b.mu.Lock()
	defer b.mu.Unlock()

	cfg := b.config
	cfg.Headers = make(map[string]string, len(b.config.Headers))
	for k, v := range b.config.Headers {
		cfg.Headers[k] = v
	}

	return cfg
}

// Request runs one call through the pipeline.
func (b *Bridge) Request(ctx context.Context, cfg *RequestConfig) (*Result, error) {
	return b.executor.Execute(ctx, cfg)
}

// Raw runs a call and returns the whole response instead of the envelope payload.
func (b *Bridge) Raw(ctx context.Context, method string, url string, body any, opts ...RequestOption) (*NormalizedResponse, error) {
	cfg := newRequestConfig(method, url, body, opts)
	cfg.ReturnRaw = true

	res, err := b.Request(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return res.Raw, nil
}

// Download runs a call whose response is a file.
func (b *Bridge) Download(ctx context.Context, method string, url string, body any, opts ...RequestOption) (*DownloadDescriptor, error) {
	cfg := newRequestConfig(method, url, body, opts)
	cfg.IsDownload = true

	res, err := b.Request(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return res.Download, nil
}

func newRequestConfig(method string, url string, body any, opts []RequestOption) *RequestConfig {
	cfg := &RequestConfig{
		Method: method,
		URL:    url,
		Body:   body,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	return cfg
}

// Do runs cfg through b and decodes the resolved payload into T.
// T may also be *NormalizedResponse or *DownloadDescriptor for raw and download calls.
func Do[T any](ctx context.Context, b *Bridge, cfg *RequestConfig) (T, error) {
	var out T

	res, err := b.Request(ctx, cfg)
	if err != nil {
		return out, err
	}

	if res == nil {
		return out, nil
	}

	payload := res.Payload
	switch {
	case res.Download != nil:
		if v, ok := any(res.Download).(T); ok {
			return v, nil
		}

		return out, fmt.Errorf("download result cannot be decoded into %T", out)
	case res.Raw != nil:
		if v, ok := any(res.Raw).(T); ok {
			return v, nil
		}

		payload = res.Raw.Data
	}

	if len(payload) == 0 || string(payload) == "null" {
		return out, nil
	}

	err = json.Unmarshal(payload, &out)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("Failed to decode %s %s payload: %w", cfg.Method, cfg.URL, err)
	}

	return out, nil
}

func Get[T any](ctx context.Context, b *Bridge, url string, opts ...RequestOption) (T, error) {
	return Do[T](ctx, b, newRequestConfig(http.MethodGet, url, nil, opts))
}

func Post[T any](ctx context.Context, b *Bridge, url string, body any, opts ...RequestOption) (T, error) {
	return Do[T](ctx, b, newRequestConfig(http.MethodPost, url, body, opts))
}

func Put[T any](ctx context.Context, b *Bridge, url string, body any, opts ...RequestOption) (T, error) {
	return Do[T](ctx, b, newRequestConfig(http.MethodPut, url, body, opts))
}

func Delete[T any](ctx context.Context, b *Bridge, url string, opts ...RequestOption) (T, error) {
	return Do[T](ctx, b, newRequestConfig(http.MethodDelete, url, nil, opts))
}
