// Package logging provides component loggers on top of zerolog.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global sink. An empty file logs to stdout; otherwise the file is
// opened in append mode and the returned closer releases it.
func Setup(level, file string) (func() error, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = os.Stdout
	closer := func() error { return nil }
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return closer, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = f.Close
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	// route stray log.Printf output (gin, libraries) through the same sink
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
	return closer, nil
}

// Logger writes structured messages tagged with a component name.
type Logger struct {
	zl zerolog.Logger
}

// New returns a logger for component, e.g. "tip-reader" or "dry-run".
func New(component string) *Logger {
	return &Logger{zl: log.Logger.With().Str("component", component).Logger()}
}

// NewWithWriter is New with an explicit sink; used by tests.
func NewWithWriter(component string, w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).With().Str("component", component).Logger()}
}

// Info logs an informational message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.emit(l.zl.Info(), msg, keysAndValues)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.emit(l.zl.Warn(), msg, keysAndValues)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.emit(l.zl.Error(), msg, keysAndValues)
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.emit(l.zl.Debug(), msg, keysAndValues)
}

func (l *Logger) emit(e *zerolog.Event, msg string, kv []interface{}) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		switch v := kv[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}
