package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"chargestats/backend/libs/logging"
	"chargestats/backend/services/sessions-service/internal/app"
	"chargestats/backend/services/sessions-service/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init application", zap.Error(err))
	}
	defer application.Close()

	logger.Info("sessions service starting",
		zap.String("addr", cfg.HTTPAddress()),
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("sweep_interval", cfg.Stats.SweepInterval),
		zap.Bool("redis", cfg.RedisEnabled()),
		zap.Bool("auth", cfg.AuthEnabled()),
	)

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application stopped with error", zap.Error(err))
		return
	}
	logger.Info("sessions service stopped")
}
