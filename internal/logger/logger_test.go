package logger_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opengovern/scope-bridge/internal/logger"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "DEBUG", want: slog.LevelDebug},
		{name: "lower case info", in: "info", want: slog.LevelInfo},
		{name: "error", in: "ERROR", want: slog.LevelError},
		{name: "unknown falls back to warn", in: "chatty", want: slog.LevelWarn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, logger.ParseLevel(tc.in))
		})
	}
}

func TestValidateLevel(t *testing.T) {
	require.NoError(t, logger.ValidateLevel("WARN"))
	require.Error(t, logger.ValidateLevel("loud"))
}

func TestInitLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	level, err := logger.InitLogger(buf, filepath.Join(t.TempDir(), "scopectl.log"), "", true, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })
	require.Equal(t, slog.LevelInfo, level.Level())

	slog.Debug("hidden")
	slog.Info("shown", logger.Err(errors.New("boom")))
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "err=boom")

	logger.SlogBackedLogrus().Info("from logrus")
	require.Contains(t, buf.String(), "from logrus")
}

func TestInitLogger_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cases := []struct {
		name    string
		level   string
		verbose bool
		debug   bool
		want    slog.Level
	}{
		{name: "default", want: slog.LevelWarn},
		{name: "configured", level: "error", want: slog.LevelError},
		{name: "verbose lowers", level: "error", verbose: true, want: slog.LevelInfo},
		{name: "verbose keeps lower", level: "debug", verbose: true, want: slog.LevelDebug},
		{name: "debug wins", level: "warn", debug: true, want: slog.LevelDebug},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			level, err := logger.InitLogger(&bytes.Buffer{}, "", tc.level, tc.verbose, tc.debug)
			require.NoError(t, err)
			require.Equal(t, tc.want, level.Level())
		})
	}

	_, err := logger.InitLogger(&bytes.Buffer{}, "", "loud", false, false)
	require.Error(t, err)
}

func TestInitLogger_ReopenClosesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	_, err := logger.InitLogger(&bytes.Buffer{}, first, "", false, false)
	require.NoError(t, err)
	slog.Warn("one")

	_, err = logger.InitLogger(&bytes.Buffer{}, second, "", false, false)
	require.NoError(t, err)
	slog.Warn("two")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Contains(t, string(data), "one")
	require.NotContains(t, string(data), "two")

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	require.Contains(t, string(data), "two")
}
