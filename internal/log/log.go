// Package log builds the process logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/awardrobe/pricetracker/internal/config"
)

// NewSlogLogger creates the default logger writing to stdout and installs it
// as the slog default.
func NewSlogLogger(cfg config.Log, app string) *slog.Logger {
	log := New(os.Stdout, cfg).With(slog.String("app", app))
	slog.SetDefault(log)

	return log
}

// New creates a logger writing to w. JSON output is meant for collectors; the
// text format is colorized for terminals.
func New(w io.Writer, cfg config.Log) *slog.Logger {
	var handler slog.Handler

	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.AddSource,
		})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			AddSource:  cfg.AddSource,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		})
	}

	return slog.New(newEnrichedHandler(handler))
}
