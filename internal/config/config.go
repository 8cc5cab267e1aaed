package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	API  APIConfig  `yaml:"api"`
	Auth AuthConfig `yaml:"auth"`
	Stub StubConfig `yaml:"stub"`
	Log  LogConfig  `yaml:"log"`
}

// APIConfig holds the CompVerse API endpoint configuration
type APIConfig struct {
	BaseURL               string `yaml:"base_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// RequestTimeout returns the per-request bound for API calls.
func (c *APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// AuthConfig holds token source configuration
type AuthConfig struct {
	// TokenFile is read when no token is present in the environment.
	TokenFile string `yaml:"token_file"`
	// FallbackUserID is used when the token payload cannot be decoded.
	FallbackUserID int64 `yaml:"fallback_user_id"`
}

// StubConfig holds the local stub API server configuration
type StubConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file. Missing fields fall back to
// defaults, so an absent file yields a usable default config.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.API.RequestTimeoutSeconds <= 0 {
		cfg.API.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}

	return cfg, nil
}

const defaultRequestTimeoutSeconds = 15

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:               "http://localhost:8000/api",
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Auth: AuthConfig{
			TokenFile: ".compverse-token",
		},
		Stub: StubConfig{
			Host:   "0.0.0.0",
			Port:   8000,
			Secret: "compverse-dev-secret",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Addr returns the stub server listen address.
func (c *StubConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
