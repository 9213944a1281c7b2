// config.go
// ----------
// This file defines the configuration structures of the bridge: ClientConfig holds the
// per-instance defaults (base URL, timeout, default headers, loading and error presentation
// defaults) and RequestConfig describes one outgoing call.
//
// Pointer booleans distinguish "not set" from "false" so a per-call value can override the
// bridge default only when the caller actually set it.
package scopebridge

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const (
	// CodeSuccess is the envelope business code signalling success.
	CodeSuccess = 200

	// CodeTimeout is the numeric code carried by Timeout-kind errors.
	CodeTimeout = 408

	// CodeNetwork is the numeric code carried by Network-kind errors (no response received).
	CodeNetwork = -1

	DefaultTimeout          = 10 * time.Second
	DefaultThrottleInterval = time.Second
	DefaultDownloadFilename = "download"
	DefaultBaseURL          = "/api"
)

// ErrorHandlerConfig controls the user-visible side channel that fires when a call fails.
type ErrorHandlerConfig struct {
	ShowErrorMessage *bool                  // Defaults to true
	CustomHandler    func(*ClassifiedError) // Replaces the default notification when set
	IgnoreErrors     []int                  // Codes that never trigger the default notification
}

// ClientConfig holds the defaults applied to every call made through a Bridge.
type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	Headers          map[string]string
	ShowLoading      bool
	ThrottleInterval time.Duration
	ErrorHandler     ErrorHandlerConfig
}

// DefaultClientConfig returns the baseline used by NewBridge.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		ShowLoading:      true,
		ThrottleInterval: DefaultThrottleInterval,
	}
}

// RequestConfig describes one outgoing call. It is created per call and discarded after resolution.
type RequestConfig struct {
	Method     string
	URL        string
	PathParams map[string]string // Substituted into "{name}" placeholders of URL
	Query      url.Values
	Body       any // Marshalled as JSON unless already []byte
	Headers    map[string]string
	Timeout    time.Duration // Overrides the bridge timeout when > 0

	ShowLoading    *bool // Nil means the bridge default
	IsDownload     bool
	ReturnRaw      bool
	EnableThrottle bool
	SkipAuth       bool // No Authorization header from the token source

	ThrottleInterval time.Duration // Defaults to the bridge interval when EnableThrottle is set
	ThrottleKey      string        // Defaults to "METHOD endpoint?query"

	ErrorHandler *ErrorHandlerConfig // Per-call override of the bridge error handler
}

var validMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
}

func (c *RequestConfig) validate() error {
	if c == nil {
		return ErrNilConfig
	}

	if strings.TrimSpace(c.URL) == "" {
		return ErrEmptyURL
	}

	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if !slices.Contains(validMethods, c.Method) {
		return ErrInvalidMethod
	}

	return nil
}

// clone returns a copy whose maps can be mutated by hooks without touching the caller's config.
func (c *RequestConfig) clone() *RequestConfig {
	cp := *c
	if c.Headers != nil {
		cp.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			cp.Headers[k] = v
		}
	}

	if c.PathParams != nil {
		cp.PathParams = make(map[string]string, len(c.PathParams))
		for k, v := range c.PathParams {
			cp.PathParams[k] = v
		}
	}

	if c.Query != nil {
		cp.Query = make(url.Values, len(c.Query))
		for k, vv := range c.Query {
			cp.Query[k] = append([]string(nil), vv...)
		}
	}

	return &cp
}

// showLoading resolves the effective loading flag against the bridge default.
func (c *RequestConfig) showLoading(def bool) bool {
	if c.ShowLoading == nil {
		return def
	}

	return *c.ShowLoading
}

// errorHandler merges the per-call override onto the bridge default.
func (c *RequestConfig) errorHandler(def ErrorHandlerConfig) ErrorHandlerConfig {
	if c.ErrorHandler == nil {
		return def
	}

	merged := def
	if c.ErrorHandler.ShowErrorMessage != nil {
		merged.ShowErrorMessage = c.ErrorHandler.ShowErrorMessage
	}

	if c.ErrorHandler.CustomHandler != nil {
		merged.CustomHandler = c.ErrorHandler.CustomHandler
	}

	if c.ErrorHandler.IgnoreErrors != nil {
		merged.IgnoreErrors = c.ErrorHandler.IgnoreErrors
	}

	return merged
}

func (h ErrorHandlerConfig) showErrorMessage() bool {
	return h.ShowErrorMessage == nil || *h.ShowErrorMessage
}

// Bool returns a pointer to b, for the optional boolean fields.
func Bool(b bool) *bool {
	return &b
}
