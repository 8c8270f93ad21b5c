package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mythoughts/internal/auth"
	"mythoughts/internal/config"
	"mythoughts/internal/db"
	httpx "mythoughts/internal/http"
	"mythoughts/internal/live"
	"mythoughts/internal/logging"
	"mythoughts/internal/profile"
	"mythoughts/internal/thought"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	gdb, err := db.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	thoughts := &thought.Service{DB: gdb}
	hub := live.NewHub(thoughts, logger.Named("live"))

	r := httpx.NewRouter(cfg, httpx.Services{
		Accounts: &auth.Service{DB: gdb, JWT: jwtSvc},
		Thoughts: thoughts,
		Profiles: &profile.Service{DB: gdb},
		Hub:      hub,
		JWT:      jwtSvc,
	}, logger.Named("http"))

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	go func() {
		if err := live.Listen(ctx, cfg.DatabaseURL, hub, logger.Named("listener")); err != nil {
			logger.Error("change listener stopped, other instances reach subscribers on resync only", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
