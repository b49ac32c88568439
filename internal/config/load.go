package config

import (
	"fmt"
	"os"
)

// Load reads, parses, normalizes, and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads the workspace config if one exists, otherwise
// returns normalized defaults so the CLI works without an init step.
// The second return is the workspace root, empty when no config was found.
func LoadOrDefault(startDir string) (Config, string, error) {
	path, err := FindConfigPath(startDir)
	if err != nil {
		var cfg Config
		Normalize(&cfg)
		return cfg, "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, RootFromConfigPath(path), nil
}
