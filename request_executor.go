package scopebridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/opengovern/scope-bridge/internal"
	"github.com/opengovern/scope-bridge/internal/logger"
)

// RequestExecutor runs the pre-flight, dispatch and post-flight phases of a call.
// It performs no retries; retry policy belongs to the caller.
type RequestExecutor struct {
	bridge *Bridge
}

func NewRequestExecutor(bridge *Bridge) *RequestExecutor {
	return &RequestExecutor{bridge: bridge}
}

// pipeline is a snapshot of the bridge state a single call works with.
type pipeline struct {
	config          ClientConfig
	notifier        Notifier
	tokenSource     oauth2.TokenSource
	requestIDHeader string

	requestHooks  []RequestHook
	responseHooks []ResponseHook
	errorHooks    []ErrorHook
}

func (re *RequestExecutor) snapshot() pipeline {
	b := re.bridge
	b.mu.Lock()
	defer b.mu.Unlock()

	p := pipeline{
		config:          b.config,
		notifier:        b.notifier,
		tokenSource:     b.tokenSource,
		requestIDHeader: b.requestIDHeader,
		requestHooks:    slices.Clone(b.requestHooks),
		responseHooks:   slices.Clone(b.responseHooks),
		errorHooks:      slices.Clone(b.errorHooks),
	}

	return p
}

// Execute runs one call. The loading counter, when acquired, is released exactly once on
// every exit path, panics included.
func (re *RequestExecutor) Execute(ctx context.Context, cfg *RequestConfig) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	p := re.snapshot()
	cfg = cfg.clone()

	if cfg.showLoading(p.config.ShowLoading) {
		release := re.bridge.loading.acquire()
		defer release()
	}

	cfg, err = re.preFlight(ctx, p, cfg)
	if err != nil {
		re.bridge.logger.DebugContext(ctx, "Request aborted before dispatch", "method", cfg.Method, "url", cfg.URL, logger.Err(err))
		return nil, err
	}

	req, path, err := re.normalize(p, cfg)
	if err != nil {
		return nil, err
	}

	dispatch := func() (*Result, error) {
		return re.dispatch(ctx, p, cfg, req, path)
	}

	if !cfg.EnableThrottle {
		return dispatch()
	}

	key := cfg.ThrottleKey
	if key == "" {
		key = cfg.Method + " " + req.Endpoint
	}

	interval := cfg.ThrottleInterval
	if interval <= 0 {
		interval = p.config.ThrottleInterval
	}

	res, shared, err := re.bridge.throttler.Do(key, interval, dispatch)
	if shared {
		re.bridge.logger.DebugContext(ctx, "Request collapsed into throttled dispatch", "key", key)
	}

	return res, err
}

// preFlight runs the request hooks in order. A hook error aborts the call.
func (re *RequestExecutor) preFlight(ctx context.Context, p pipeline, cfg *RequestConfig) (*RequestConfig, error) {
	for _, hook := range p.requestHooks {
		if hook == nil {
			continue
		}

		next, err := hook(ctx, cfg)
		if err != nil {
			return cfg, err
		}

		if next != nil {
			cfg = next
		}
	}

	// Hooks may have rewritten method or URL.
	err := cfg.validate()
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

// normalize builds the transport request: endpoint, merged headers and encoded body.
func (re *RequestExecutor) normalize(p pipeline, cfg *RequestConfig) (*NormalizedRequest, string, error) {
	path, err := joinPath(p.config.BaseURL, cfg.URL, cfg.PathParams)
	if err != nil {
		return nil, "", err
	}

	endpoint := path
	if len(cfg.Query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}

		endpoint += sep + cfg.Query.Encode()
	}

	headers := make(map[string]string, len(cfg.Headers)+len(p.config.Headers)+2)
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	for k, v := range p.config.Headers {
		if !hasHeader(headers, k) {
			headers[k] = v
		}
	}

	if p.tokenSource != nil && !cfg.SkipAuth && !hasHeader(headers, "Authorization") {
		tok, err := p.tokenSource.Token()
		if err != nil {
			return nil, "", fmt.Errorf("Failed to acquire auth token: %w", err)
		}

		if tok != nil && tok.AccessToken != "" {
			headers["Authorization"] = tok.Type() + " " + tok.AccessToken
		}
	}

	if p.requestIDHeader != "" && !hasHeader(headers, p.requestIDHeader) {
		headers[p.requestIDHeader] = uuid.NewString()
	}

	body, err := encodeBody(cfg.Body)
	if err != nil {
		return nil, "", fmt.Errorf("Failed to encode request body for %s %s: %w", cfg.Method, path, err)
	}

	return &NormalizedRequest{
		Method:   cfg.Method,
		Endpoint: endpoint,
		Headers:  headers,
		Body:     body,
	}, path, nil
}

// dispatch performs the transport call and the post-flight phase.
func (re *RequestExecutor) dispatch(ctx context.Context, p pipeline, cfg *RequestConfig, req *NormalizedRequest, path string) (*Result, error) {
	log := re.bridge.logger

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = p.config.Timeout
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.DebugContext(ctx, "Dispatching request", "method", req.Method, "endpoint", req.Endpoint, "request_id", req.Headers[p.requestIDHeader])

	start := time.Now()
	resp, err := re.bridge.transport.RoundTrip(callCtx, req)
	elapsed := time.Since(start)

	if err != nil {
		return re.fail(ctx, p, cfg, classifyTransportError(cfg.Method, path, err), true)
	}

	if resp == nil {
		return re.fail(ctx, p, cfg, classifyTransportError(cfg.Method, path, fmt.Errorf("empty response")), true)
	}

	log.DebugContext(ctx, "Request settled", "method", req.Method, "endpoint", req.Endpoint, "status", resp.StatusCode, "elapsed", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return re.fail(ctx, p, cfg, classifyStatus(cfg.Method, path, resp), true)
	}

	res, err := re.postFlight(ctx, p, cfg, path, resp)
	if err != nil {
		ce, ok := AsClassified(err)
		if ok {
			return re.fail(ctx, p, cfg, ce, false)
		}

		return nil, err
	}

	return res, nil
}

// postFlight handles a 2xx response: response hooks, download extraction, envelope unwrapping.
func (re *RequestExecutor) postFlight(ctx context.Context, p pipeline, cfg *RequestConfig, path string, resp *NormalizedResponse) (*Result, error) {
	for _, hook := range p.responseHooks {
		if hook == nil {
			continue
		}

		next, err := hook(ctx, cfg, resp)
		if err != nil {
			return nil, err
		}

		if next != nil {
			resp = next
		}
	}

	if cfg.IsDownload {
		return downloadResult(cfg, path, resp)
	}

	if len(strings.TrimSpace(string(resp.Data))) == 0 {
		if cfg.ReturnRaw {
			return &Result{Raw: resp}, nil
		}

		return &Result{}, nil
	}

	env := Envelope{}
	err := json.Unmarshal(resp.Data, &env)
	if err != nil {
		if cfg.ReturnRaw {
			return &Result{Raw: resp}, nil
		}

		return nil, fmt.Errorf("Failed to decode response envelope for %s %s: %w", cfg.Method, path, err)
	}

	if env.Code != CodeSuccess {
		return nil, businessError(cfg.Method, path, &env)
	}

	if cfg.ReturnRaw {
		return &Result{Raw: resp}, nil
	}

	return &Result{Payload: env.Data}, nil
}

// downloadResult wraps a binary payload. A JSON envelope answered to a download request
// carries an error, not a file.
func downloadResult(cfg *RequestConfig, path string, resp *NormalizedResponse) (*Result, error) {
	contentType := resp.Header("Content-Type")
	if strings.Contains(contentType, "application/json") && gjson.ValidBytes(resp.Data) {
		code := gjson.GetBytes(resp.Data, "code")
		if code.Exists() && int(code.Int()) != CodeSuccess {
			env := Envelope{}
			_ = json.Unmarshal(resp.Data, &env)
			return nil, businessError(cfg.Method, path, &env)
		}
	}

	filename := internal.FilenameFromDisposition(resp.Header("Content-Disposition"))
	if filename == "" {
		filename = DefaultDownloadFilename
	}

	return &Result{
		Download: &DownloadDescriptor{
			Filename:    filename,
			ContentType: contentType,
			Payload:     resp.Data,
		},
	}, nil
}

// fail runs the error hooks (transport failures only) and the presentation side channel.
// The side channel never changes the outcome.
func (re *RequestExecutor) fail(ctx context.Context, p pipeline, cfg *RequestConfig, cerr *ClassifiedError, runHooks bool) (*Result, error) {
	var err error = cerr

	if runHooks {
		for _, hook := range p.errorHooks {
			if hook == nil {
				continue
			}

			res, hookErr := hook(ctx, cfg, cerr)
			if hookErr == nil && res != nil {
				re.bridge.logger.DebugContext(ctx, "Request failure recovered by error hook", "method", cfg.Method, "path", cerr.Path)
				return res, nil
			}

			if hookErr != nil {
				err = hookErr
				next, ok := AsClassified(hookErr)
				if !ok {
					break
				}

				cerr = next
			}
		}
	}

	re.bridge.logger.WarnContext(ctx, "Request failed", "method", cfg.Method, "url", cfg.URL, logger.Err(err))

	final, ok := AsClassified(err)
	if !ok {
		return nil, err
	}

	if aborted(ctx, final) {
		re.bridge.logger.DebugContext(ctx, "Not reporting call aborted by its caller", "method", cfg.Method, "path", final.Path)
		return nil, err
	}

	re.present(ctx, p, cfg, final)

	return nil, err
}

// present fires the user-visible side channel for a failed call.
func (re *RequestExecutor) present(ctx context.Context, p pipeline, cfg *RequestConfig, cerr *ClassifiedError) {
	h := cfg.errorHandler(p.config.ErrorHandler)

	if h.CustomHandler != nil {
		h.CustomHandler(cerr)
		return
	}

	if slices.Contains(h.IgnoreErrors, cerr.Code) {
		return
	}

	if h.showErrorMessage() && p.notifier != nil {
		p.notifier.Notify(ctx, cerr)
	}
}

// aborted reports whether the call ended because its caller cancelled ctx. The caller knows,
// so the user is not told.
func aborted(ctx context.Context, cerr *ClassifiedError) bool {
	return cerr.Kind == KindTimeout && errors.Is(cerr.Cause, context.Canceled) && ctx.Err() != nil
}

func hasHeader(headers map[string]string, key string) bool {
	for k := range headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}

	return false
}

// joinPath substitutes path params and prefixes the base URL unless target is absolute.
func joinPath(base string, target string, params map[string]string) (string, error) {
	for name, value := range params {
		target = strings.ReplaceAll(target, "{"+name+"}", url.PathEscape(value))
	}

	if strings.Contains(target, "{") && strings.Contains(target, "}") {
		return "", fmt.Errorf("Unresolved path parameter in %q", target)
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}

	if u.IsAbs() || base == "" {
		return target, nil
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(target, "/"), nil
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
