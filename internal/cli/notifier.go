package cli

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	scopebridge "github.com/opengovern/scope-bridge"
)

// LogrusNotifier reports failed calls to the user through a logrus logger.
type LogrusNotifier struct {
	log   *logrus.Logger
	count atomic.Int64
}

func NewLogrusNotifier(log *logrus.Logger) *LogrusNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &LogrusNotifier{log: log}
}

func (n *LogrusNotifier) Notify(ctx context.Context, err *scopebridge.ClassifiedError) {
	if err == nil {
		return
	}

	n.count.Add(1)
	n.log.WithContext(ctx).WithFields(logrus.Fields{
		"kind": string(err.Kind),
		"code": err.Code,
	}).Error(err.Message)
}

// Count returns how many notifications were sent.
func (n *LogrusNotifier) Count() int64 {
	return n.count.Load()
}
