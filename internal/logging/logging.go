// Package logging configures the process-wide slog logger and carries it in contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// Setup installs a logger writing to w as the slog default and returns ctx
// carrying it. format is "json" or anything else for tinted text.
func Setup(ctx context.Context, w io.Writer, level slog.Level, format string) context.Context {
	logger := New(w, level, format)
	slog.SetDefault(logger)
	return slogctx.NewCtx(ctx, logger)
}

// New builds a logger without touching the slog default.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !colorEnabled(w),
		})
	}
	return slog.New(slogctx.NewHandler(handler, &slogctx.HandlerOptions{}))
}

// With returns ctx whose logger carries the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return slogctx.With(ctx, args...)
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
