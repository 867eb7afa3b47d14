package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the process logger. Production deployments emit JSON for
// the log collector; everything else gets human-readable text. Every record
// carries a service attribute so the engine's lines are filterable alongside
// the rest of the platform.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", "hanapbahay"))
}
