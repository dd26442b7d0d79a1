// Package config loads wordweave's settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the variable holding the config file path.
const PathEnv = "WORDWEAVE_CONFIG"

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The file is taken from WORDWEAVE_CONFIG, falling back to ./wordweave.yaml;
// a missing fallback file means ENV + defaults only.
func Load() (*Config, error) {
	path := os.Getenv(PathEnv)
	explicit := path != ""
	if !explicit {
		path = "./wordweave.yaml"
	}
	return LoadFile(path, explicit)
}

// LoadFile is Load with an explicit path. When required is false a missing
// file is not an error.
func LoadFile(path string, required bool) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if required {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
