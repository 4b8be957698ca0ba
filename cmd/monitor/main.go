package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"airmon/internal/config"
	"airmon/internal/logger"
	"airmon/internal/monitor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := monitor.New(cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to create monitor")
	}

	if err := m.Run(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("monitor exited")
		cancel()
		os.Exit(1)
	}
	logger.Logger.Info().Msg("exited")
}
