package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"lunchcheck_bot/internal/app"
	"lunchcheck_bot/internal/config"
	"lunchcheck_bot/internal/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("Failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		logger.L().Fatalf("Failed to initialize app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.Start()
	logger.L().Info("Bot is ready")

	// blocks until the context is canceled by a signal
	application.Bot.Start(ctx)

	if err := application.Close(context.Background()); err != nil {
		logger.L().Errorf("Shutdown error: %v", err)
	}
	logger.L().Info("Shutdown complete")
}
