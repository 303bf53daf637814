// Package logging builds the process slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/store"
)

// New creates a logger from cfg and installs it as the slog default.
// Output goes to cfg.File when set, otherwise to stderr. The returned close
// function releases the file and is safe to call when there is none.
func New(cfg config.LogConfig) (*slog.Logger, func() error, error) {
	var (
		out     io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)
	if cfg.File != "" {
		if err := store.EnsureDir(cfg.File); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn = f, f.Close
	}

	logger := slog.New(handler(out, cfg))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func handler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
