package main

import (
	"context"
	"errors"
	"os"

	"github.com/dovermoor/cinefetch/internal/services"
	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	var tmdbService services.MovieService
	if svc, err := services.NewTMDBService(config.Credentials.TMDB.Map()); err == nil {
		svc.SetThrottle(config.Harvest.RequestsPerSecond)
		svc.SetLogger(logger)
		tmdbService = svc
	}

	apiService := services.NewAPIService(
		config.Credentials.TMDB.BaseURL,
		config.Credentials.TMDB.Map(),
		nil,
	)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		TMDB:       tmdbService,
		API:        apiService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "cinefetch",
		Usage:    "Harvest movie datasets from the TMDB catalog",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
