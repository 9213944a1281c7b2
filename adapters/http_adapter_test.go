package adapters_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	scopebridge "github.com/opengovern/scope-bridge"
	"github.com/opengovern/scope-bridge/adapters"
)

func TestHTTPAdapter_RoundTrip(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Trace", "abc")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"code":418}`))
	}))
	defer srv.Close()

	a := adapters.NewHTTPAdapter(srv.URL + "/")
	resp, err := a.RoundTrip(context.Background(), &scopebridge.NormalizedRequest{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/queries?page=2",
		Headers:  map[string]string{"Authorization": "Bearer t"},
		Body:     []byte(`{"name":"q"}`),
	})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/api/v1/queries", gotPath)
	require.Equal(t, "page=2", gotQuery)
	require.Equal(t, "Bearer t", gotAuth)
	require.Equal(t, `{"name":"q"}`, gotBody)

	require.Equal(t, http.StatusTeapot, resp.StatusCode)
	require.Equal(t, "abc", resp.Headers["x-trace"])
	require.Equal(t, "abc", resp.Header("X-Trace"))
	require.JSONEq(t, `{"code":418}`, string(resp.Data))
}

func TestHTTPAdapter_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	a := adapters.NewHTTPAdapter(srv.URL)
	a.MaxBodyBytes = 4

	_, err := a.RoundTrip(context.Background(), &scopebridge.NormalizedRequest{Method: http.MethodGet, Endpoint: "/file"})
	require.ErrorContains(t, err, "exceeds 4 bytes")
}

func TestHTTPAdapter_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := adapters.NewHTTPAdapter(srv.URL).RoundTrip(ctx, &scopebridge.NormalizedRequest{Method: http.MethodGet, Endpoint: "/slow"})
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPAdapter_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = adapters.NewHTTPAdapter("http://"+addr).RoundTrip(context.Background(), &scopebridge.NormalizedRequest{Method: http.MethodGet, Endpoint: "/api/x"})
	require.Error(t, err)
	require.False(t, errors.Is(err, context.DeadlineExceeded))
}
