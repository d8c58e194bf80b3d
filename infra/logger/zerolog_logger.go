package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts rs/zerolog to the core logging contract. Every entry
// carries a component field so fleet-wide output can be filtered per
// subsystem (engine, scheduler, gate, notify).
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a component-scoped logger. APP_ENV=dev selects the
// human-readable console writer; any other value emits JSON lines for log
// shipping. LOG_LEVEL, when set to a valid zerolog level, narrows what gets
// emitted.
func NewZerologLogger(component string) Logger {
	out := zerolog.New(os.Stdout)
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		out = out.Level(lvl)
	}
	return &ZerologLogger{log: out.With().Timestamp().Str("component", component).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

// Debugw emits one debug entry with every field attached as a typed
// key/value, not flattened into the message.
func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
