// Package logging builds the process slog.Logger from the log section of the
// configuration.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/janskibh/netapp-exporter/internal/config"
)

// New returns a logger writing to w with the configured handler and level.
// Unknown values fall back to JSON at info level; config validation rejects
// them before this point in normal operation.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps debug|info|warn|error to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
