// http_adapter.go
// ---------------
// This adapter carries normalized requests over net/http to the query console backend.
//
// Key Points:
// - Endpoints that are not absolute URLs are resolved against BaseURL.
// - Bodies default to a JSON content type.
// - Non-2xx statuses are returned as responses; only failures to get a response are errors.
// - Response header keys are lower-cased.
// - Bodies larger than MaxBodyBytes are rejected so a runaway export cannot exhaust memory.

package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	scopebridge "github.com/opengovern/scope-bridge"
)

const (
	// DefaultMaxBodyBytes bounds how much of a response body is read.
	DefaultMaxBodyBytes int64 = 256 << 20
)

type HTTPAdapter struct {
	BaseURL      string
	Client       *http.Client
	MaxBodyBytes int64
	UserAgent    string
}

func NewHTTPAdapter(baseURL string) *HTTPAdapter {
	return &HTTPAdapter{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Client:       &http.Client{},
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

func (h *HTTPAdapter) RoundTrip(ctx context.Context, req *scopebridge.NormalizedRequest) (*scopebridge.NormalizedResponse, error) {
	fullURL := req.Endpoint
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		fullURL = h.BaseURL + "/" + strings.TrimLeft(fullURL, "/")
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, err
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if httpReq.Header.Get("User-Agent") == "" && h.UserAgent != "" {
		httpReq.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body of %s %s exceeds %d bytes", req.Method, req.Endpoint, limit)
	}

	headers := make(map[string]string, len(resp.Header))
	for k, vals := range resp.Header {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}

	return &scopebridge.NormalizedResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Data:       data,
	}, nil
}
