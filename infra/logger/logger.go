package logger

import corelogger "github.com/loadaxis/fleetopt/core/logger"

// Logger re-exports the core contract so infra consumers import one package.
type Logger = corelogger.Logger

// NopLogger discards everything. Used by tests and as the notify fallback.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns the default adapter for a component. Output format and level
// come from APP_ENV and LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
