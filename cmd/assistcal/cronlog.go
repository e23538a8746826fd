package main

import (
	"github.com/robfig/cron/v3"

	appLog "assistcal/internal/log"
)

// cronLogger routes the scheduler's own messages through the app logger.
// cron reports every wake-up at Info, so those land at DEBUG.
type cronLogger struct{}

var _ cron.Logger = cronLogger{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
