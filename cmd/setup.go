package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup prepares a working installation: config file from the embedded
// template, app database, and migrations. A pasted browser cURL command can
// seed the catalog credential.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		r.writePlain("✓ Config created: %s\n", configPath)
	}

	if curlCmd != "" || curlFile != "" {
		if err := r.applyCurlCredentials(config, configPath, curlCmd, curlFile); err != nil {
			return err
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Database ready: %s\n", config.Database.Path)

	if !config.Credentials.TMDB.HasCredentials() {
		r.writePlainln("Next steps:")
		r.writePlain("1. Add your TMDB API key to %s under [credentials.tmdb]\n", configPath)
		r.writePlain("2. Run 'cinefetch config --test' to verify the credential\n")
		r.writePlain("3. Run 'cinefetch scrape' to collect your first dataset\n")
	}

	return nil
}

// applyCurlCredentials extracts an API credential from a pasted cURL command
// and writes it back to the config file.
func (r *Runner) applyCurlCredentials(config *shared.Config, configPath, curlCmd, curlFile string) error {
	r.logger.Info("parsing cURL command for catalog credentials")

	var creds *shared.CurlCredentials
	var err error

	if curlFile != "" {
		creds, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		creds, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	token := creds.BearerToken()
	if creds.APIKey == "" && token == "" {
		return fmt.Errorf("%w: no api_key parameter or bearer token found in cURL command", shared.ErrMissingCredentials)
	}

	if token != "" {
		config.Credentials.TMDB.AccessToken = token
	}
	if creds.APIKey != "" {
		config.Credentials.TMDB.APIKey = creds.APIKey
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return err
	}

	r.writePlain("✓ Catalog credential saved to %s\n", configPath)
	return nil
}

// setupCommand builds the installation command.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config, initialize the app database, and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "curl",
				Usage: "cURL command from browser DevTools (Copy as cURL) to extract the API credential from",
			},
			&cli.StringFlag{
				Name:  "curl-file",
				Usage: "Path to a file containing the cURL command",
			},
		},
		Action: r.Setup,
	}
}
