// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Store       StoreConfig       `toml:"store"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Funbox      FunboxConfig      `toml:"funbox"`
}

// StoreConfig maps database settings.
type StoreConfig struct {
	Driver *string `toml:"driver"`
	Path   *string `toml:"path"`
	URL    *string `toml:"url"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LeaderboardConfig maps leaderboard tracking settings.
type LeaderboardConfig struct {
	Track *bool `toml:"track"`
}

// FunboxConfig lists PB eligibility overrides keyed by modifier name.
type FunboxConfig struct {
	CanGetPb map[string]bool `toml:"can-get-pb"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key: %s", undecoded[0].String())
	}
	return cfg, nil
}
