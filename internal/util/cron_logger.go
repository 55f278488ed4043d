package util

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// CronLogger routes robfig/cron's scheduler messages into a Logger.
type CronLogger struct {
	Logger *Logger
}

var _ cron.Logger = CronLogger{}

func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.Logger.LogEvent(LOG_LEVEL_DEBUG, "cron:", msg, formatKeysAndValues(keysAndValues))
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.Logger.LogEvent(LOG_LEVEL_ERROR, "cron:", msg, formatKeysAndValues(keysAndValues), "error="+fmt.Sprint(err))
}

func formatKeysAndValues(keysAndValues []interface{}) string {
	var sb strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&sb, "%v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&sb, "%v", keysAndValues[i])
		}
	}
	return sb.String()
}
