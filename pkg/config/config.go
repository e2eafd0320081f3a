// Package config loads the optional TOML configuration file with
// defaults for the CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"irpfgen/pkg/assets"
)

// DefaultEdition is targeted when neither the config file nor the CLI
// selects one.
const DefaultEdition = 2023

// Config carries the defaults a user can pin in the config file. CLI
// flags take precedence over every field.
type Config struct {
	URLTemplate   string `toml:"url_template"`
	UserAgent     string `toml:"user_agent"`
	Edition       int    `toml:"edition"`
	Jobs          int    `toml:"jobs"`
	DirectSources bool   `toml:"direct_sources"`
	DataChecker   bool   `toml:"data_checker"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		URLTemplate: assets.DefaultTemplate,
		UserAgent:   assets.UserAgent,
		Edition:     DefaultEdition,
		DataChecker: true,
	}
}

// DefaultPath is the config file looked up when --config is not given.
// Empty when the user config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "irpfgen", "config.toml")
}

// Load reads the config file at path, falling back to DefaultPath when
// path is empty. A missing default-path file yields the built-in
// defaults; a missing explicit file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config file %s does not exist", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.URLTemplate == "" {
		cfg.URLTemplate = assets.DefaultTemplate
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = assets.UserAgent
	}
	if cfg.Edition == 0 {
		cfg.Edition = DefaultEdition
	}
	return cfg, nil
}
