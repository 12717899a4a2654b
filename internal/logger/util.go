package logger

import (
	"fmt"
	"log/slog"
	"time"
)

func slogNow() time.Time {
	return time.Now()
}

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// attrsFrom converts a flat key/value arg list (slog's convention) into
// slog.Attr values for With().
func attrsFrom(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, _ := args[i].(string)
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return attrs
}
