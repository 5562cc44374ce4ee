package translator

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnv switches on debug logging when no logger is configured.
const DebugEnv = "DELIGHT_DEBUG"

// NewLogger returns a text logger on w without timestamps. debug lowers the
// level to include dispatch tracing.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// defaultLogger discards everything unless DELIGHT_DEBUG is set.
func defaultLogger() *slog.Logger {
	if os.Getenv(DebugEnv) == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return NewLogger(os.Stderr, true)
}
