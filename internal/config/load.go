package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SHOTCUT_"

// Load builds a Config from defaults, then an optional YAML file, then
// SHOTCUT_* environment variables. An empty path searches the usual
// locations; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig("")

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if _, ok := os.LookupEnv(EnvPrefix + "MIN_SHOT_LENGTH"); ok {
		cfg.minShotExplicit = true
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(data, &keys); err == nil {
		if _, ok := keys["min_shot_length"]; ok {
			c.minShotExplicit = true
		}
	}
	return nil
}

// Save writes the configuration as YAML. min_shot_length is left out unless
// it was set explicitly, so a reload keeps the strategy's default.
func (c *Config) Save(path string) error {
	out := *c
	if !out.minShotExplicit {
		out.MinShotLength = 0
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func findConfigFile() string {
	candidates := []string{
		"./shotcut.yaml",
		"./shotcut.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "shotcut", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
