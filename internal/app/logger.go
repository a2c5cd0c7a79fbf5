package app

import (
	"io"
	"log/slog"
)

// logLevels maps the accepted log level names to slog levels.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ValidLogLevel reports whether name is an accepted log level.
func ValidLogLevel(name string) bool {
	_, ok := logLevels[name]
	return ok
}

// newLogger builds an isolated logger writing to w. Unknown levels fall back
// to info; any format other than "json" gives text output.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
