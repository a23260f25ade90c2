package common

import (
	"context"
	"io"
	"log/slog"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) level() slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Logger is the diagnostic channel of the summarizers. Attributes are
// alternating key/value pairs, as for slog.
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string, attrs ...any)

	// Error logs an error
	Error(err error, attrs ...any)

	// Debug logs a debug message
	Debug(msg string, attrs ...any)

	// Info logs an info message
	Info(msg string, attrs ...any)

	// Warning logs a warning message
	Warning(msg string, attrs ...any)

	// With returns a logger that adds attrs to every message.
	With(attrs ...any) Logger
}

// SlogLogger implements Logger as structured text on a single writer,
// normally the host's diagnostic stream.
type SlogLogger struct {
	log      *slog.Logger
	minLevel Severity
}

// NewSlogLogger creates a logger writing key=value records to w.
// Timestamps are left out; the host stamps its own diagnostic output.
func NewSlogLogger(w io.Writer, minLevel Severity) *SlogLogger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: minLevel.level(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
	return &SlogLogger{
		log:      slog.New(h),
		minLevel: minLevel,
	}
}

// NewLogger returns a SlogLogger on w when enabled, otherwise a NoOpLogger.
func NewLogger(enabled bool, w io.Writer, minLevel Severity) Logger {
	if !enabled || w == nil {
		return NewNoOpLogger()
	}
	return NewSlogLogger(w, minLevel)
}

// Log logs a message with the specified severity
func (l *SlogLogger) Log(severity Severity, msg string, attrs ...any) {
	if severity < l.minLevel {
		return
	}
	l.log.Log(context.Background(), severity.level(), msg, attrs...)
}

// Error logs an error
func (l *SlogLogger) Error(err error, attrs ...any) {
	if err != nil {
		l.Log(SeverityError, err.Error(), attrs...)
	}
}

// Debug logs a debug message
func (l *SlogLogger) Debug(msg string, attrs ...any) {
	l.Log(SeverityDebug, msg, attrs...)
}

// Info logs an info message
func (l *SlogLogger) Info(msg string, attrs ...any) {
	l.Log(SeverityInfo, msg, attrs...)
}

// Warning logs a warning message
func (l *SlogLogger) Warning(msg string, attrs ...any) {
	l.Log(SeverityWarning, msg, attrs...)
}

func (l *SlogLogger) With(attrs ...any) Logger {
	return &SlogLogger{
		log:      l.log.With(attrs...),
		minLevel: l.minLevel,
	}
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Log does nothing
func (l *NoOpLogger) Log(severity Severity, msg string, attrs ...any) {}

// Error does nothing
func (l *NoOpLogger) Error(err error, attrs ...any) {}

// Debug does nothing
func (l *NoOpLogger) Debug(msg string, attrs ...any) {}

// Info does nothing
func (l *NoOpLogger) Info(msg string, attrs ...any) {}

// Warning does nothing
func (l *NoOpLogger) Warning(msg string, attrs ...any) {}

// With returns the same no-op logger
func (l *NoOpLogger) With(attrs ...any) Logger { return l }
