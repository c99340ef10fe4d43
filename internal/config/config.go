// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultListenAddr = "127.0.0.1:3000"
	DefaultLogLevel   = "info"
)

// Config holds the full configuration for the orbit server.
type Config struct {
	ListenAddr string `toml:"listen_addr"`
	DBPath     string `toml:"db_path"` // empty = platform config dir
	LogLevel   string `toml:"log_level"`

	// SeedDemoData loads demo tasks into the default profile on first
	// run against an empty database.
	SeedDemoData bool `toml:"seed_demo_data"`
}

// Default returns a config with all defaults applied.
func Default() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		LogLevel:     DefaultLogLevel,
		SeedDemoData: true,
	}
}

// Load reads a TOML config file over the defaults. A missing file is
// fine; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the fields a typo would most likely break.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	return nil
}
