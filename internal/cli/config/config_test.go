package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("base-url", "", "")
	fs.String("timeout", "", "")
	fs.StringP("output", "o", "", "")
	fs.Bool("verbose", false, "")
	fs.IntSlice("ignore-errors", nil, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, 10*time.Second, cfg.TimeoutDuration())
	require.Equal(t, time.Second, cfg.ThrottleDuration())
	require.Equal(t, "table", cfg.Output)
	require.True(t, cfg.ShowErrors)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file/api\ntimeout: 1500\noutput: yaml\nignore_errors: [404]\n"), 0o600))

	t.Setenv("SCOPECTL_TIMEOUT", "3s")
	t.Setenv("SCOPECTL_OUTPUT", "json")
	t.Setenv("SCOPECTL_LOG_LEVEL", "info")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--output", "table", "--verbose"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	require.Equal(t, "http://file/api", cfg.BaseURL)
	require.Equal(t, 3*time.Second, cfg.TimeoutDuration())
	require.Equal(t, "table", cfg.Output)
	require.True(t, cfg.Verbose)
	require.Equal(t, []int{404}, cfg.IgnoreErrors)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("timeout: 250\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.TimeoutDuration())
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "empty base url", env: map[string]string{"SCOPECTL_BASE_URL": " "}},
		{name: "bad timeout", env: map[string]string{"SCOPECTL_TIMEOUT": "soon"}},
		{name: "bad throttle", env: map[string]string{"SCOPECTL_THROTTLE_INTERVAL": "-1s"}},
		{name: "bad log level", env: map[string]string{"SCOPECTL_LOG_LEVEL": "loud"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load("", nil)
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.ErrorContains(t, err, "error reading config file")
}
