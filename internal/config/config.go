// Package config holds all actionplan configuration, loaded from
// .actionplan/config.yaml with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"actionplan/internal/types"
)

// Config holds all actionplan configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Planner settings
	Planner PlannerConfig `yaml:"planner"`

	// Default policy constraints applied when the caller supplies none
	Policy PolicyConfig `yaml:"policy"`

	// History store
	History HistoryConfig `yaml:"history"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// PlannerConfig configures plan compilation.
type PlannerConfig struct {
	// DefaultPlatform is used when the caller context names no platform.
	DefaultPlatform string `yaml:"default_platform"`
}

// PolicyConfig provides default gate constraints for the CLI host.
type PolicyConfig struct {
	MaxActions       int      `yaml:"max_actions"`
	AllowedPlatforms []string `yaml:"allowed_platforms"`
}

// HistoryConfig configures the execution history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig mirrors the categorized logging settings read by
// internal/logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "actionplan",
		Version: "1.0.0",
		Planner: PlannerConfig{
			DefaultPlatform: string(types.PlatformStripe),
		},
		Policy: PolicyConfig{
			MaxActions: 0, // unlimited
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(".actionplan", "history.db"),
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
// Environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("ACTIONPLAN_DEFAULT_PLATFORM"); p != "" {
		c.Planner.DefaultPlatform = p
	}
	if v := os.Getenv("ACTIONPLAN_MAX_ACTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Policy.MaxActions = n
		}
	}
	if path := os.Getenv("ACTIONPLAN_HISTORY_DB"); path != "" {
		c.History.Path = path
	}
	if v := os.Getenv("ACTIONPLAN_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}

// DefaultPlatform resolves the configured default platform, falling back to
// stripe when the configured value is not in the closed platform set.
func (c *Config) DefaultPlatform() types.Platform {
	p := types.Platform(c.Planner.DefaultPlatform)
	if p.Valid() {
		return p
	}
	return types.PlatformStripe
}

// Constraints converts the configured policy defaults into gate constraints.
// Returns nil when no default constraints are configured.
func (c *Config) Constraints() *types.PolicyConstraints {
	if c.Policy.MaxActions == 0 && len(c.Policy.AllowedPlatforms) == 0 {
		return nil
	}
	constraints := &types.PolicyConstraints{MaxActions: c.Policy.MaxActions}
	for _, p := range c.Policy.AllowedPlatforms {
		constraints.AllowedPlatforms = append(constraints.AllowedPlatforms, types.Platform(p))
	}
	return constraints
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
