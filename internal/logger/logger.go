package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
)

var (
	fileMu  sync.Mutex
	logFile *os.File
)

// InitLogger installs the process-wide slog logger. The level comes from levelStr (warn when
// empty); verbose lowers it to info and debug to debug. When filepath is set, records also go
// to that file. A file opened by an earlier call is closed.
func InitLogger(w io.Writer, filepath string, levelStr string, verbose bool, debug bool) (*slog.LevelVar, error) {
	level := slog.LevelWarn
	if levelStr != "" {
		err := ValidateLevel(levelStr)
		if err != nil {
			return nil, err
		}

		level = ParseLevel(levelStr)
	}

	if verbose && level > slog.LevelInfo {
		level = slog.LevelInfo
	}

	if debug {
		level = slog.LevelDebug
	}

	if w == nil {
		w = os.Stderr
	}

	fileMu.Lock()
	defer fileMu.Unlock()

	err := closeLocked()
	if err != nil {
		return nil, err
	}

	if filepath != "" {
		f, err := os.OpenFile(filepath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("Failed to open log file %q: %w", filepath, err)
		}

		logFile = f
		w = io.MultiWriter(w, f)
	}

	var handler slog.LevelVar
	handler.Set(level)

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     &handler,
		AddSource: debug,
	}))

	slog.SetDefault(logger)
	bridgeLogrus(logger.Handler())

	return &handler, nil
}

// Close closes the log file opened by InitLogger, if any. Records keep going to the writer.
func Close() error {
	fileMu.Lock()
	defer fileMu.Unlock()

	return closeLocked()
}

func closeLocked() error {
	if logFile == nil {
		return nil
	}

	err := logFile.Close()
	logFile = nil
	return err
}

// Err logs errors under the "err" key.
func Err(err error) slog.Attr {
	return slog.Any("err", err)
}

func ValidateLevel(levelStr string) error {
	validLogLevels := []string{slog.LevelDebug.String(), slog.LevelInfo.String(), slog.LevelWarn.String(), slog.LevelError.String()}
	if !slices.Contains(validLogLevels, strings.ToUpper(levelStr)) {
		return fmt.Errorf("Log level %q is invalid, must be one of %q", levelStr, strings.Join(validLogLevels, ","))
	}

	return nil
}

func ParseLevel(levelStr string) slog.Level {
	level := slog.LevelWarn
	switch strings.ToUpper(levelStr) {
	case slog.LevelDebug.String():
		level = slog.LevelDebug
	case slog.LevelInfo.String():
		level = slog.LevelInfo
	case slog.LevelWarn.String():
		level = slog.LevelWarn
	case slog.LevelError.String():
		level = slog.LevelError
	}

	return level
}
