// Package logger declares the logging contract the optimization core writes
// through. Core packages never construct a logger themselves; adapters live in
// infra/logger and are injected at wiring time.
package logger

// Logger is the leveled contract used across the engine, the scheduler and
// the gate. The *f methods follow fmt.Printf conventions.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw attaches machine-readable fields to a debug entry, for tick
	// summaries and notification payloads.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StructuredLogger is the field-carrying subset of Logger, for consumers that
// only emit key/value context and should not depend on the full contract.
type StructuredLogger interface {
	Debugw(msg string, fields map[string]any)
}
