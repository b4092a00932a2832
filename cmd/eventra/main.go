package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/eventra/eventra/docs"
	"github.com/eventra/eventra/internal/app"
	"github.com/eventra/eventra/internal/config"
)

// @title Eventra API
// @version 1.0
// @description Event booking service: events, tickets and auth.
// @host localhost:4000
// @BasePath /
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("application finished with error", "error", err)
		os.Exit(1)
	}
}
