// Package logging builds the process logger and keeps a shared instance
// for code that has no logger of its own.
package logging

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// DevMode indicates if development logging is enabled
	DevMode = os.Getenv("DEV_MODE") == "1"

	shared atomic.Pointer[zap.Logger]
)

func init() {
	shared.Store(zap.NewNop())
}

// SetLogger replaces the shared logger. A nil logger silences it.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	shared.Store(l)
}

// L returns the shared logger.
func L() *zap.Logger {
	return shared.Load()
}

// DevLog logs only when DEV_MODE=1
func DevLog(format string, args ...interface{}) {
	if DevMode {
		L().Debug(fmt.Sprintf(format, args...), zap.String("channel", "dev"))
	}
}

// UserLog logs important user-facing information (always visible)
func UserLog(format string, args ...interface{}) {
	L().Info(fmt.Sprintf(format, args...), zap.String("channel", "user"))
}

// ErrorLog logs errors (always visible)
func ErrorLog(format string, args ...interface{}) {
	L().Error(fmt.Sprintf(format, args...))
}
