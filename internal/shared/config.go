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

// Environment variable names that override credential values from the TOML
// file, so secrets can live in a .env file instead of config.toml.
const (
	envGoogleClientID     = "LIKESYNC_GOOGLE_CLIENT_ID"
	envGoogleClientSecret = "LIKESYNC_GOOGLE_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Sync        SyncConfig        `toml:"sync"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Google GoogleConfig `toml:"google"`
}

// GoogleConfig contains Google OAuth2 client credentials for the YouTube Data API.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings for the trigger endpoints.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SyncConfig contains tunables for the pull/push pipelines.
type SyncConfig struct {
	PageSize  int     `toml:"page_size"`  // liked-feed page size (max 50)
	RateLimit float64 `toml:"rate_limit"` // remote API requests per second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// A .env file in the working directory, when present, supplies credential
// overrides without failing when absent.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	_ = godotenv.Load()
	applyEnvOverrides(&config)

	return &config, nil
}

// applyEnvOverrides replaces credential fields with environment values when set.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(envGoogleClientID); v != "" {
		config.Credentials.Google.ClientID = v
	}
	if v := os.Getenv(envGoogleClientSecret); v != "" {
		config.Credentials.Google.ClientSecret = v
	}
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
