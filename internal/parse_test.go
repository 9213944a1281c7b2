package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFilenameFromDisposition(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{header: "attachment; filename=report.csv", want: "report.csv"},
		{header: `attachment; filename="my report.csv"`, want: "my report.csv"},
		{header: "attachment; filename=a+b.csv", want: "a+b.csv"},
		{header: "attachment; FILENAME*=UTF-8''r%C3%A9sum%C3%A9.pdf", want: "résumé.pdf"},
		{header: "attachment; filename=bad%zz.csv", want: "bad%zz.csv"},
		{header: "attachment", want: ""},
		{header: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			require.Equal(t, tc.want, FilenameFromDisposition(tc.header))
		})
	}
}

func TestParseDuration(t *testing.T) {
	require.Equal(t, 1500*time.Millisecond, ParseDuration("1500"))
	require.Equal(t, 6*time.Minute, ParseDuration("6m0s"))
	require.Equal(t, time.Duration(0), ParseDuration(""))
	require.Equal(t, time.Duration(0), ParseDuration("soon"))
}
