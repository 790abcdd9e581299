package app

import (
	"io"
	"log/slog"
)

// logLevels maps the accepted configuration strings to slog levels. Config
// validation guarantees membership; the warn fallback is for callers that
// bypass NewConfig.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app's own slog.Logger writing to outW. The global
// logger is left alone so concurrent App instances in tests stay isolated.
// The default level is warn: below that, tool diagnostics own the terminal.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
