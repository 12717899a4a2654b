package logger

import (
	"io"
	"log/slog"
	"log/syslog"

	slogmulti "github.com/samber/slog-multi"
)

// NewHandlerArgs mirrors the teacher's logger.NewLoggerArgs construction
// shape (cmd/scheduler.go): a small options struct instead of a long
// parameter list.
type NewHandlerArgs struct {
	Debug     bool
	Daemonize bool // when true, fan out to syslog in addition to stderr
	Stderr    io.Writer
}

// NewHandler builds the slog.Handler used by New(). When Daemonize is
// set, records are routed to syslog (facility LOG_DAEMON, matching
// original_source/src/lmapd.c's openlog("lmapd", LOG_PID|LOG_NDELAY,
// LOG_DAEMON) call); otherwise they go to stderr as human-readable text.
// github.com/samber/slog-multi fans out to both when both sinks are
// wanted (e.g. during the brief daemonize() window before stdio is
// redirected to /dev/null).
func NewHandler(args NewHandlerArgs) (slog.Handler, error) {
	level := slog.LevelInfo
	if args.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: true}

	stderr := args.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	textHandler := slog.NewTextHandler(stderr, opts)

	if !args.Daemonize {
		return textHandler, nil
	}

	sysWriter, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "lmapd")
	if err != nil {
		// syslog unavailable (e.g. non-Unix or no syslogd): fall back to
		// stderr alone rather than failing daemon startup over logging.
		return textHandler, nil
	}
	syslogHandler := slog.NewTextHandler(sysWriter, opts)

	return slogmulti.Fanout(syslogHandler, textHandler), nil
}
