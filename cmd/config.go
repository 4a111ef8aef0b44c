package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dovermoor/cinefetch/internal/services"
	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigShow prints the resolved configuration with credentials masked.
// With --test it also performs a live genre-list call against the catalog.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	source := configPath
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, showing resolved defaults", "error", err)
			source = "(defaults)"
		}
	} else {
		source = "(defaults)"
	}

	r.writePlainHeader("Configuration")
	r.writePlain("Source: %s\n\n", source)

	r.writePlain("[credentials.tmdb]\n")
	r.writePlain("  api_key:      %s\n", shared.MaskSecret(config.Credentials.TMDB.APIKey))
	r.writePlain("  access_token: %s\n", shared.MaskSecret(config.Credentials.TMDB.AccessToken))
	r.writePlain("  base_url:     %s\n", config.Credentials.TMDB.BaseURL)
	r.writePlain("  language:     %s\n", config.Credentials.TMDB.Language)
	r.writePlain("  user_agent:   %s\n", config.Credentials.TMDB.UserAgent)

	r.writePlain("\n[database]\n")
	r.writePlain("  path:           %s\n", config.Database.Path)
	r.writePlain("  max_open_conns: %d\n", config.Database.MaxOpenConns)
	r.writePlain("  max_idle_conns: %d\n", config.Database.MaxIdleConns)

	r.writePlain("\n[server]\n")
	r.writePlain("  host: %s\n", config.Server.Host)
	r.writePlain("  port: %d\n", config.Server.Port)

	r.writePlain("\n[harvest]\n")
	r.writePlain("  default_count:       %d\n", config.Harvest.DefaultCount)
	r.writePlain("  default_concurrency: %d\n", config.Harvest.DefaultConcurrency)
	r.writePlain("  include_adult:       %v\n", config.Harvest.IncludeAdult)
	r.writePlain("  requests_per_second: %.1f\n", config.Harvest.RequestsPerSecond)

	if !cmd.Bool("test") {
		return nil
	}

	r.writePlain("\nTesting catalog credentials...\n")

	svc, err := services.NewTMDBService(config.Credentials.TMDB.Map())
	if err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}
	svc.SetThrottle(config.Harvest.RequestsPerSecond)
	svc.SetLogger(r.logger)

	genres, err := svc.ResolveGenres(ctx)
	if err != nil {
		return fmt.Errorf("catalog unreachable: %w", err)
	}

	r.writePlain("✓ Catalog reachable: %d genres resolved\n", len(genres))
	return nil
}

// configCommand builds the configuration display command.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show resolved configuration with masked credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "test",
				Usage: "Perform a live credential check against the catalog",
			},
		},
		Action: r.ConfigShow,
	}
}
