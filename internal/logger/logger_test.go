package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmapcloud/lmapd/internal/logger"
)

func newTestLogger(t *testing.T, debug bool) (logger.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h, err := logger.NewHandler(logger.NewHandlerArgs{Debug: debug, Stderr: &buf})
	require.NoError(t, err)
	return logger.New(h), &buf
}

func TestLoggerSourceLocation(t *testing.T) {
	cases := []struct {
		name    string
		logFunc func(logger.Logger)
	}{
		{"Info", func(l logger.Logger) { l.Info("test message") }},
		{"Warn", func(l logger.Logger) { l.Warn("test message") }},
		{"Error", func(l logger.Logger) { l.Error("test message") }},
		{"Infof", func(l logger.Logger) { l.Infof("test %s", "message") }},
		{"Errorf", func(l logger.Logger) { l.Errorf("test %s", "message") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, buf := newTestLogger(t, false)
			tc.logFunc(l)
			require.Contains(t, buf.String(), "logger_test.go:")
			require.NotContains(t, buf.String(), "internal/logger/logger.go")
			require.NotContains(t, buf.String(), "slog-multi")
		})
	}
}

func TestLoggerDebugLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(t, false)
	l.Debug("should not appear")
	require.Empty(t, buf.String())

	l, buf = newTestLogger(t, true)
	l.Debug("should appear")
	require.Contains(t, buf.String(), "should appear")
}

func TestLoggerWithAttachesFields(t *testing.T) {
	l, buf := newTestLogger(t, false)
	l.With("schedule", "sched1").Info("fired")
	require.Contains(t, buf.String(), "schedule=sched1")
}

func TestLoggerFormattedVariants(t *testing.T) {
	l, buf := newTestLogger(t, false)
	l.Errorf("action %q exited with status %d", "act1", 2)
	out := buf.String()
	require.Contains(t, out, `action "act1" exited with status 2`)
	require.True(t, strings.Contains(out, "level=ERROR"))
}
