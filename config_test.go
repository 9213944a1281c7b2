package scopebridge

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestConfig_Clone(t *testing.T) {
	orig := &RequestConfig{
		Method:     "get",
		URL:        "/x",
		Headers:    map[string]string{"A": "1"},
		PathParams: map[string]string{"id": "1"},
		Query:      url.Values{"q": {"a"}},
	}

	cp := orig.clone()
	cp.Headers["A"] = "2"
	cp.PathParams["id"] = "2"
	cp.Query.Add("q", "b")

	require.Equal(t, "1", orig.Headers["A"])
	require.Equal(t, "1", orig.PathParams["id"])
	require.Equal(t, []string{"a"}, orig.Query["q"])
}

func TestRequestConfig_ErrorHandlerMerge(t *testing.T) {
	def := ErrorHandlerConfig{IgnoreErrors: []int{401}}

	cfg := &RequestConfig{}
	require.Equal(t, def.IgnoreErrors, cfg.errorHandler(def).IgnoreErrors)
	require.True(t, cfg.errorHandler(def).showErrorMessage())

	cfg.ErrorHandler = &ErrorHandlerConfig{ShowErrorMessage: Bool(false)}
	merged := cfg.errorHandler(def)
	require.False(t, merged.showErrorMessage())
	require.Equal(t, []int{401}, merged.IgnoreErrors)

	cfg.ErrorHandler.IgnoreErrors = []int{}
	require.Empty(t, cfg.errorHandler(def).IgnoreErrors)
}

func TestJoinPath(t *testing.T) {
	cases := []struct {
		name    string
		base    string
		target  string
		params  map[string]string
		want    string
		wantErr bool
	}{
		{name: "relative", base: "/api", target: "/v1/queries", want: "/api/v1/queries"},
		{name: "trailing slash base", base: "http://h/api/", target: "datasources", want: "http://h/api/datasources"},
		{name: "absolute target", base: "/api", target: "https://x.io/y", want: "https://x.io/y"},
		{name: "escaped param", base: "/api", target: "/sql-parser/tables/{table}", params: map[string]string{"table": "a b/c"}, want: "/api/sql-parser/tables/a%20b%2Fc"},
		{name: "unresolved param", base: "/api", target: "/v1/queries/{id}", wantErr: true},
		{name: "no base", target: "/v1/queries", want: "/v1/queries"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := joinPath(tc.base, tc.target, tc.params)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
