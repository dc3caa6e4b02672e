package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Sync      SyncConfig      `toml:"sync"`
	Providers ProvidersConfig `toml:"providers"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SyncConfig tunes the synchronization pipelines.
type SyncConfig struct {
	Workers        int     `toml:"workers"`           // Concurrent file operations (default 10)
	SampleBytes    int64   `toml:"sample_bytes"`      // Byte range fetched per file for extraction (default 500000)
	RateLimit      float64 `toml:"rate_limit"`        // Fetch requests per second (0 = unlimited)
	SkipWindowHrs  int     `toml:"skip_window_hours"` // Recently-synced skip window (default 24)
	RequestTimeout int     `toml:"request_timeout"`   // Per-request HTTP timeout in seconds (default 30)
	PageSize       int     `toml:"page_size"`         // Library API page size (default 50)
}

// ProvidersConfig contains provider endpoint settings.
type ProvidersConfig struct {
	FileBaseURL    string `toml:"file_base_url"`    // Base URL of the file-tree provider gateway
	LibraryBaseURL string `toml:"library_base_url"` // Base URL of the library API provider
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
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
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidInput)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
