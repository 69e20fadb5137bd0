// Package config loads the optional volscan configuration file: TOML via
// BurntSushi/toml, from an XDG-resolved path, always optional — a missing
// file is not an error.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional volscan configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults for the flags a scan
// actually needs, so a user doesn't have to repeat them on every invocation.
type DefaultsConfig struct {
	Workers            *int    `toml:"workers"`
	TopN               *int    `toml:"top_n"`
	ForceDirectoryScan *bool   `toml:"force_directory_scan"`
	TUI                *bool   `toml:"tui"`
	LogFile            *string `toml:"log_file"`
	JSONLog            *bool   `toml:"json_log"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "volscan", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config (no
// error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
