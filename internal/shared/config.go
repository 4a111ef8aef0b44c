package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Harvest     HarvestConfig     `toml:"harvest"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	TMDB TMDBConfig `toml:"tmdb"`
}

// placeholderAPIKey is the value shipped in the embedded example config. It is
// treated as unset so a freshly created config does not look credentialed.
const placeholderAPIKey = "your_tmdb_api_key"

// TMDBConfig contains catalog API credentials and client settings.
//
// Either APIKey (v3 key, sent as a query parameter) or AccessToken (v4 read
// access token, sent as a bearer header) must be set; AccessToken wins when
// both are present.
type TMDBConfig struct {
	APIKey      string `toml:"api_key"`
	AccessToken string `toml:"access_token"`
	BaseURL     string `toml:"base_url"`
	Language    string `toml:"language"`
	UserAgent   string `toml:"user_agent"`
}

// HasCredentials reports whether a usable catalog credential is configured.
func (c TMDBConfig) HasCredentials() bool {
	return c.AccessToken != "" || (c.APIKey != "" && c.APIKey != placeholderAPIKey)
}

// Map converts the credentials to the map shape consumed by service
// constructors. The example-config placeholder key is blanked out.
func (c TMDBConfig) Map() map[string]string {
	apiKey := c.APIKey
	if apiKey == placeholderAPIKey {
		apiKey = ""
	}
	return map[string]string{
		"api_key":      apiKey,
		"access_token": c.AccessToken,
		"base_url":     c.BaseURL,
		"language":     c.Language,
		"user_agent":   c.UserAgent,
	}
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains dashboard HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// HarvestConfig contains harvest defaults applied when flags are absent.
type HarvestConfig struct {
	DefaultCount       int     `toml:"default_count"`
	DefaultConcurrency int     `toml:"default_concurrency"`
	IncludeAdult       bool    `toml:"include_adult"`
	RequestsPerSecond  float64 `toml:"requests_per_second"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// A .env file in the working directory is loaded first when present, and the
// TMDB_API_KEY / TMDB_ACCESS_TOKEN environment variables override whatever the
// file provides, so credentials can stay out of version-controlled config.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&config)
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	_ = godotenv.Load()

	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}

	applyEnvOverrides(&config)
	return &config
}

// applyEnvOverrides lets environment variables win over file-provided credentials.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		config.Credentials.TMDB.APIKey = v
	}
	if v := os.Getenv("TMDB_ACCESS_TOKEN"); v != "" {
		config.Credentials.TMDB.AccessToken = v
	}
	if v := os.Getenv("TMDB_BASE_URL"); v != "" {
		config.Credentials.TMDB.BaseURL = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to disk as TOML.
func SaveConfig(path string, config *Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
