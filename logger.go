package kura

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-logr/logr"
)

func NewLogger() logr.Logger {
	return logr.FromSlogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}),
	)
}

func WithLogger(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

func LoggerFrom(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
