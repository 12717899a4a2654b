// Package logger provides the daemon's structured logging facade: a
// small interface over log/slog with syslog/stderr fan-out, matching the
// shape of the teacher's internal/logger package (Debug/Info/Warn/Error
// plus formatted variants, each reporting the caller's true source
// location rather than a frame inside this package or slog-multi).
package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// Logger is the daemon-wide logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	With(args ...any) Logger
}

type slogLogger struct {
	h slog.Handler
}

// New wraps an slog.Handler (typically built via NewHandler) as a Logger.
func New(h slog.Handler) Logger {
	return &slogLogger{h: h}
}

func (l *slogLogger) log(level slog.Level, msg string, args ...any) {
	if !l.h.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	// skip: Callers, log, and the Debug/Info/Warn/Error wrapper itself
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(slogNow(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.h.Handle(context.Background(), r)
}

func (l *slogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *slogLogger) Debugf(format string, args ...any) { l.logf(slog.LevelDebug, format, args...) }
func (l *slogLogger) Infof(format string, args ...any)  { l.logf(slog.LevelInfo, format, args...) }
func (l *slogLogger) Warnf(format string, args ...any)  { l.logf(slog.LevelWarn, format, args...) }
func (l *slogLogger) Errorf(format string, args ...any) { l.logf(slog.LevelError, format, args...) }

func (l *slogLogger) logf(level slog.Level, format string, args ...any) {
	if !l.h.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(slogNow(), level, sprintf(format, args...), pcs[0])
	_ = l.h.Handle(context.Background(), r)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{h: l.h.WithAttrs(attrsFrom(args))}
}
