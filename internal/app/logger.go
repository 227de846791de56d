package app

import (
	"io"
	"log/slog"
)

// logLevels maps the accepted -log-level values to slog levels. It is the
// single source of truth for level validation in the CLI layer.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ValidLogLevel reports whether s is an accepted logging level.
func ValidLogLevel(s string) bool {
	_, ok := logLevels[s]
	return ok
}

// ValidLogFormat reports whether s is an accepted log output format.
func ValidLogFormat(s string) bool {
	return s == "text" || s == "json"
}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances. Unknown
// levels fall back to info; the CLI validates them before we get here.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}
