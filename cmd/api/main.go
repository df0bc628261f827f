package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/app"
	"github.com/markdave123-py/LoanAdvisor/internal/config"
	"github.com/markdave123-py/LoanAdvisor/internal/logging"
)

func main() {
	// SIGINT/SIGTERM cancel ctx and start a graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close", zap.Error(err))
		}
	}()

	logger.Info("loan advisor is running", zap.String("port", cfg.Port))
	if err := application.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return
	}
	logger.Info("shut down cleanly")
}
