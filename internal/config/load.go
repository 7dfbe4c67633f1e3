package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags, and
// validates the result.
func Load() (*Config, error) {
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}
	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}

	applyFlags(cfg)
	if cfg.Imagery.StorePath == "" {
		cfg.Imagery.StorePath = filepath.Join(ConfigDir(), "tiles.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom returns the defaults overlaid with the file at path. An empty
// path returns the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MidgardGlobe")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MidgardGlobe")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "midgard-globe")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "midgard-globe")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
