// Package config loads the optional user presentation config. The
// detection core never reads it; only the CLI and renderer consume it.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = "envsense"
	DefaultConfigFile = "config.yaml"
)

// Config tunes the presentation layer. All fields are optional; a
// missing file yields the defaults.
type Config struct {
	// Color is auto, always, or never.
	Color string `yaml:"color"`
	// Compact selects the single-line rendering by default.
	Compact bool `yaml:"compact"`
	// Tree selects the tree rendering by default.
	Tree bool `yaml:"tree"`
	// Descriptions annotates check --list output by default.
	Descriptions bool `yaml:"descriptions"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Color: "auto"}
}

// DefaultPath resolves the OS-conventional config location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Color == "" {
		cfg.Color = "auto"
	}
	return cfg, nil
}
