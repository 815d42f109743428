// Package config loads runtime configuration from the environment, with an
// optional YAML file override for CLI usage.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	// Validation scheduling
	DebounceWindowMS int `yaml:"debounce_window_ms"`

	// Workflow limits
	MaxNodesPerWorkflow int `yaml:"max_nodes_per_workflow"`
	MaxEdgesPerWorkflow int `yaml:"max_edges_per_workflow"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DebounceWindowMS: getEnvInt("DEBOUNCE_WINDOW_MS", 300),

		MaxNodesPerWorkflow: getEnvInt("MAX_NODES_PER_WORKFLOW", 10000),
		MaxEdgesPerWorkflow: getEnvInt("MAX_EDGES_PER_WORKFLOW", 50000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfigFile loads environment configuration, then overrides it with
// values from a YAML file
func LoadConfigFile(path string) (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.DebounceWindowMS <= 0 {
		return fmt.Errorf("debounce window must be positive, got %d", c.DebounceWindowMS)
	}
	if c.DebounceWindowMS > 10000 {
		return fmt.Errorf("debounce window must stay bounded, got %d", c.DebounceWindowMS)
	}
	if c.MaxNodesPerWorkflow <= 0 || c.MaxEdgesPerWorkflow <= 0 {
		return fmt.Errorf("workflow limits must be positive")
	}
	return nil
}

// DebounceWindow returns the debounce window as a duration
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceWindowMS) * time.Millisecond
}

// IsDevelopment reports whether the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
