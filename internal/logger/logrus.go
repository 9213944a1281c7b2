package logger

import (
	"io"
	"log/slog"
	"sync"

	sloghook "github.com/shogo82148/logrus-slog-hook"
	"github.com/sirupsen/logrus"
)

var logrusMu sync.Mutex

// bridgeLogrus routes the logrus standard logger into handler.
func bridgeLogrus(handler slog.Handler) {
	logrusMu.Lock()
	defer logrusMu.Unlock()

	std := logrus.StandardLogger()
	std.ReplaceHooks(make(logrus.LevelHooks))
	std.AddHook(sloghook.New(handler))
	std.SetFormatter(sloghook.NewFormatter())
	std.SetOutput(io.Discard)
	std.SetLevel(logrus.TraceLevel)
}

// SlogBackedLogrus returns the logrus standard logger, forwarding into the default slog handler
// once InitLogger ran.
func SlogBackedLogrus() *logrus.Logger {
	return logrus.StandardLogger()
}
