package output

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeTable},
		{in: "JSON", want: ModeJSON},
		{in: "yml", want: ModeYAML},
		{in: "xml", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRenderer(t *testing.T) {
	v := []item{{ID: "1", Name: "orders"}}
	view := Table{Header: table.Row{"ID", "Name"}, Rows: []table.Row{{"1", "orders"}}}

	buf := &bytes.Buffer{}
	require.NoError(t, NewRenderer(buf, ModeTable).Render(v, view))
	require.Contains(t, buf.String(), "orders")
	require.Contains(t, buf.String(), "│")

	buf.Reset()
	require.NoError(t, NewRenderer(buf, ModeJSON).Render(v, view))
	require.JSONEq(t, `[{"id":"1","name":"orders"}]`, buf.String())

	buf.Reset()
	require.NoError(t, NewRenderer(buf, ModeYAML).Render(v, view))
	require.Equal(t, "- id: \"1\"\n  name: orders\n", buf.String())
}

func TestRenderer_Message(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewRenderer(buf, ModeTable).Message("query q1 published"))
	require.Equal(t, "query q1 published\n", buf.String())

	buf.Reset()
	require.NoError(t, NewRenderer(buf, ModeJSON).Message("done"))
	require.JSONEq(t, `{"message":"done"}`, buf.String())
}
