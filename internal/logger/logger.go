// Package logger wraps log/slog for walkhub. The server logs text to stdout;
// the level is switched to debug with the DEBUG env var or -debug flag.
package logger

import (
	"log/slog"
	"os"
)

var defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// SetLogger replaces the package-level logger.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

// WithDebug builds the process logger at the requested level, installs it as
// the package default and returns it for collaborators that take a
// *slog.Logger directly (the stats engine, the mirror client).
func WithDebug(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	l := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	SetLogger(l)
	return l
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// With returns a child logger carrying extra attributes.
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}
