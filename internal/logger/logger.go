// Package logger provides structured logging with typed fields.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Field is a typed key/value pair attached to a log entry.
type Field = slog.Attr

// Logger is the logging interface used throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// String creates a string field.
func String(key, value string) Field { return slog.String(key, value) }

// Int creates an int field.
func Int(key string, value int) Field { return slog.Int(key, value) }

// Int64 creates an int64 field.
func Int64(key string, value int64) Field { return slog.Int64(key, value) }

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field { return slog.Uint64(key, value) }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return slog.Float64(key, value) }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return slog.Bool(key, value) }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return slog.Duration(key, value) }

// Time creates a time field.
func Time(key string, value time.Time) Field { return slog.Time(key, value) }

// Error creates an error field under the "error" key. A nil error is
// rendered as an empty string rather than omitted so log lines stay
// greppable by key.
func Error(err error) Field {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

type slogLogger struct {
	l *slog.Logger
}

// New creates a Logger writing text output to w at the given level.
func New(w io.Writer, level slog.Level) Logger {
	return &slogLogger{l: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// NewDefault creates a Logger writing to stderr at info level.
func NewDefault() Logger {
	return New(os.Stderr, slog.LevelInfo)
}

// NewNop creates a Logger that discards all output. Useful in tests.
func NewNop() Logger {
	return New(io.Discard, slog.LevelError+1)
}

func (s *slogLogger) Debug(msg string, fields ...Field) {
	s.l.LogAttrs(context.Background(), slog.LevelDebug, msg, fields...)
}

func (s *slogLogger) Info(msg string, fields ...Field) {
	s.l.LogAttrs(context.Background(), slog.LevelInfo, msg, fields...)
}

func (s *slogLogger) Warn(msg string, fields ...Field) {
	s.l.LogAttrs(context.Background(), slog.LevelWarn, msg, fields...)
}

func (s *slogLogger) Error(msg string, fields ...Field) {
	s.l.LogAttrs(context.Background(), slog.LevelError, msg, fields...)
}

func (s *slogLogger) With(fields ...Field) Logger {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return &slogLogger{l: s.l.With(args...)}
}
