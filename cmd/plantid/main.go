package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(logger, level).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("plantid failed", "error", err)
		}
		stop()
		os.Exit(1)
	}
}
