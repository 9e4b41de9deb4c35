// Package config loads the server configuration: defaults, overlaid by an
// optional YAML file, then validated.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"parcelforge/internal/world"
)

// Config is the full process configuration.
type Config struct {
	Port     int    `yaml:"port"`
	AdminKey string `yaml:"admin_key"` // bearer token for POST endpoints; empty disables them
	DBPath   string `yaml:"db_path"`

	// TickIntervalMS is the base scheduler interval in milliseconds.
	TickIntervalMS int `yaml:"tick_interval_ms"`

	Map world.MapConfig `yaml:"map"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "data/worlds.db",
		TickIntervalMS: 1000,
		Map:            world.DefaultMapConfig(),
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the server knobs and delegates map parameters to the
// world package.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d outside (0, 65535]", c.Port)
	}
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive, got %d", c.TickIntervalMS)
	}
	return c.Map.Validate()
}
