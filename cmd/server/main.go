package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go-shop-api/internal/logger"
)

func main() {
	slog.SetDefault(logger.New(os.Stdout, "pretty", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
