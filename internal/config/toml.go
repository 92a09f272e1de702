// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Toss  TossConfig  `toml:"toss"`
	Spin  SpinConfig  `toml:"spin"`
	Serve ServeConfig `toml:"serve"`
	Log   LogConfig   `toml:"log"`
}

// TossConfig maps outcome source settings.
type TossConfig struct {
	Source      *string   `toml:"source"`
	URL         *string   `toml:"url"`
	Timeout     *Duration `toml:"timeout"`
	RevealDelay *Duration `toml:"reveal-delay"`
	FPS         *int      `toml:"fps"`
}

// SpinConfig maps animation tuning.
type SpinConfig struct {
	IdleRate        *float64 `toml:"idle-rate"`
	SpinRate        *float64 `toml:"spin-rate"`
	WobbleAmplitude *float64 `toml:"wobble-amplitude"`
	WobbleFrequency *float64 `toml:"wobble-frequency"`
	LandingFactor   *float64 `toml:"landing-factor"`
	WobbleDamp      *float64 `toml:"wobble-damp"`
	SettleEpsilon   *float64 `toml:"settle-epsilon"`
}

// ServeConfig maps flip server settings.
type ServeConfig struct {
	Addr *string `toml:"addr"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
