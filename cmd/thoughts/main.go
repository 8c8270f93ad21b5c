package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mythoughts/internal/backend/remote"
	"mythoughts/internal/config"
	"mythoughts/internal/logging"
	"mythoughts/internal/tui"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.NewFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	rc := remote.New(cfg.ServerURL, cfg.SessionFile, logger.Named("remote"))
	logger.Info("starting", zap.String("server", cfg.ServerURL))

	if err := tui.Run(ctx, rc, rc, logger); err != nil {
		logger.Error("ui exited", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
