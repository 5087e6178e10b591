// Package config loads the lunch club configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "lunchclub.yaml"

// Config is the runtime configuration shared by the CLI and the server.
type Config struct {
	// Database is the SQLite database path.
	Database string `yaml:"database"`

	// ListenAddr is the address the Connect server listens on.
	ListenAddr string `yaml:"listen_addr"`

	// MinGroupSize is the default minimum lunch group size.
	MinGroupSize int `yaml:"min_group_size"`

	// HistoryWindow is how far back committed rounds count as previous
	// matches. Zero disables history.
	HistoryWindow time.Duration `yaml:"history_window"`

	// ShowDepartments renders username|department in generated output.
	ShowDepartments bool `yaml:"show_departments"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig configures the single operator account allowed to change the
// roster and commit rounds.
type AuthConfig struct {
	Operator     string        `yaml:"operator"`
	PasswordHash string        `yaml:"password_hash"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database:        "./data/lunchclub.db",
		ListenAddr:      ":8080",
		MinGroupSize:    3,
		HistoryWindow:   90 * 24 * time.Hour,
		ShowDepartments: true,
		LogLevel:        "info",
		Auth: AuthConfig{
			Operator: "admin",
			TokenTTL: 24 * time.Hour,
		},
	}
}

// Load reads path on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database = getEnv("LUNCHCLUB_DB", c.Database)
	c.ListenAddr = getEnv("LUNCHCLUB_ADDR", c.ListenAddr)
	c.Auth.JWTSecret = getEnv("LUNCHCLUB_JWT_SECRET", c.Auth.JWTSecret)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks the values the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.New("config: database path is required")
	}
	if c.MinGroupSize <= 0 {
		return fmt.Errorf("config: min_group_size must be positive, got %d", c.MinGroupSize)
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("config: history_window must not be negative, got %s", c.HistoryWindow)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// AuthEnabled reports whether an operator password and signing secret are
// configured. Mutating RPCs are refused without them.
func (c *Config) AuthEnabled() bool {
	return c.Auth.PasswordHash != "" && c.Auth.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
