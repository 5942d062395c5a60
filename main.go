package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wellplay/wellplay-backend/app"
	"github.com/wellplay/wellplay-backend/app/shared/observability"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	"github.com/wellplay/wellplay-backend/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}

	logger := obs.Provider.Logger
	logger.Info("Starting league service")

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		logger.Error("Failed to initialize app", attr.Error(err))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Application stopped with error", attr.Error(err))
	}

	if err := application.Close(); err != nil {
		os.Exit(1)
	}
	logger.Info("League service stopped")
}
