package scopebridge

import (
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// Option configures a Bridge at construction time.
type Option func(*Bridge)

func WithBaseURL(baseURL string) Option {
	return func(b *Bridge) { b.config.BaseURL = baseURL }
}

func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.config.Timeout = d }
}

// WithDefaultHeader adds a header attached to every call that does not set it itself.
func WithDefaultHeader(key, value string) Option {
	return func(b *Bridge) {
		if b.config.Headers == nil {
			b.config.Headers = make(map[string]string)
		}

		b.config.Headers[key] = value
	}
}

// WithoutLoadingByDefault makes calls skip the loading counter unless they opt in.
func WithoutLoadingByDefault() Option {
	return func(b *Bridge) { b.config.ShowLoading = false }
}

func WithThrottleInterval(d time.Duration) Option {
	return func(b *Bridge) { b.config.ThrottleInterval = d }
}

// WithErrorHandler sets the bridge-wide error presentation defaults.
func WithErrorHandler(h ErrorHandlerConfig) Option {
	return func(b *Bridge) { b.config.ErrorHandler = h }
}

func WithNotifier(n Notifier) Option {
	return func(b *Bridge) { b.notifier = n }
}

// WithTokenSource attaches "Authorization: Bearer <token>" to calls that carry no Authorization header.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(b *Bridge) { b.tokenSource = ts }
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRequestIDHeader changes the header carrying the generated request id. Empty disables it.
func WithRequestIDHeader(header string) Option {
	return func(b *Bridge) { b.requestIDHeader = header }
}

// RequestOption tunes a single call made through the convenience wrappers.
type RequestOption func(*RequestConfig)

func WithQuery(values url.Values) RequestOption {
	return func(c *RequestConfig) {
		if values == nil {
			return
		}

		if c.Query == nil {
			c.Query = make(url.Values)
		}

		for k, vv := range values {
			for _, v := range vv {
				c.Query.Add(k, v)
			}
		}
	}
}

// WithQueryParam adds one query parameter; empty values are skipped.
func WithQueryParam(key, value string) RequestOption {
	return func(c *RequestConfig) {
		if value == "" {
			return
		}

		if c.Query == nil {
			c.Query = make(url.Values)
		}

		c.Query.Add(key, value)
	}
}

// WithPathParam substitutes "{key}" in the request URL.
func WithPathParam(key, value string) RequestOption {
	return func(c *RequestConfig) {
		if c.PathParams == nil {
			c.PathParams = make(map[string]string)
		}

		c.PathParams[key] = value
	}
}

func WithHeader(key, value string) RequestOption {
	return func(c *RequestConfig) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}

		c.Headers[key] = value
	}
}

func WithRequestTimeout(d time.Duration) RequestOption {
	return func(c *RequestConfig) { c.Timeout = d }
}

func WithoutLoading() RequestOption {
	return func(c *RequestConfig) { c.ShowLoading = Bool(false) }
}

// WithoutAuthorization keeps the bridge token source out of one call, e.g. the login itself.
func WithoutAuthorization() RequestOption {
	return func(c *RequestConfig) { c.SkipAuth = true }
}

func WithReturnRaw() RequestOption {
	return func(c *RequestConfig) { c.ReturnRaw = true }
}

// WithThrottle collapses repeated calls within interval into one dispatch.
// A zero interval means the bridge default.
func WithThrottle(interval time.Duration) RequestOption {
	return func(c *RequestConfig) {
		c.EnableThrottle = true
		c.ThrottleInterval = interval
	}
}

// WithThrottleKey groups calls under key instead of their method and endpoint.
func WithThrottleKey(key string) RequestOption {
	return func(c *RequestConfig) {
		c.EnableThrottle = true
		c.ThrottleKey = key
	}
}

// WithRequestErrorHandler overrides the bridge error presentation for one call.
func WithRequestErrorHandler(h ErrorHandlerConfig) RequestOption {
	return func(c *RequestConfig) { c.ErrorHandler = &h }
}

// WithIgnoreErrors suppresses the default notification for the given codes.
func WithIgnoreErrors(codes ...int) RequestOption {
	return func(c *RequestConfig) {
		if c.ErrorHandler == nil {
			c.ErrorHandler = &ErrorHandlerConfig{}
		}

		c.ErrorHandler.IgnoreErrors = codes
	}
}

// WithSilentErrors disables the default notification for one call.
func WithSilentErrors() RequestOption {
	return func(c *RequestConfig) {
		if c.ErrorHandler == nil {
			c.ErrorHandler = &ErrorHandlerConfig{}
		}

		c.ErrorHandler.ShowErrorMessage = Bool(false)
	}
}
