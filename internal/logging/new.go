package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	BackendZap  = "zap"
	BackendSlog = "slog"
)

// New builds a Logger for the given backend ("zap" or "slog"), level
// ("debug", "info", "warn", "error") and format ("json" or "console").
// An empty backend selects zap.
func New(backend, level, format string) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendZap:
		l, err := NewZapConfig(level, format).Build()
		if err != nil {
			return nil, fmt.Errorf("build zap logger: %w", err)
		}
		return NewZapLogger(l), nil
	case BackendSlog:
		return NewSlogLogger(slog.New(newSlogHandler(os.Stdout, level, format))), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

func newSlogHandler(w io.Writer, level, format string) slog.Handler {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "console" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
