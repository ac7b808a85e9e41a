// Package config loads engine configuration. Core logic receives an
// explicit struct; environment variables are read here, at the edge, and
// nowhere else.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/porter/pkg/application"
	"github.com/felixgeelhaar/porter/pkg/storage"
)

// Config is the full engine configuration persisted in .porter/config.yaml.
type Config struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	PluginPath  string `yaml:"plugin_path,omitempty"`
	MaxAttempts int    `yaml:"max_attempts"`
	Workers     int    `yaml:"workers"`

	GenerateTimeoutSeconds int `yaml:"generate_timeout_seconds"`
	ValidateTimeoutSeconds int `yaml:"validate_timeout_seconds"`

	SourceDir string `yaml:"source_dir"`
	TargetDir string `yaml:"target_dir"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Provider:               "ollama",
		Model:                  "llama3",
		MaxAttempts:            3,
		Workers:                2,
		GenerateTimeoutSeconds: 300,
		ValidateTimeoutSeconds: 120,
		SourceDir:              "source",
		TargetDir:              "output",
	}
}

// Load reads config.yaml under root, falling back to defaults, then applies
// PORTER_* environment overrides.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	cfg := Default()

	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the configuration file.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORTER_AI_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("PORTER_AI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PORTER_PLUGIN"); v != "" {
		cfg.PluginPath = v
	}
	if v := os.Getenv("PORTER_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("PORTER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
}

func absJoin(root, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// Options converts the configuration into the engine's option struct.
func (c *Config) Options(root string) application.Options {
	return application.Options{
		SourceDir:       absJoin(root, c.SourceDir),
		TargetDir:       absJoin(root, c.TargetDir),
		Workers:         c.Workers,
		MaxAttempts:     c.MaxAttempts,
		GenerateTimeout: time.Duration(c.GenerateTimeoutSeconds) * time.Second,
		ValidateTimeout: time.Duration(c.ValidateTimeoutSeconds) * time.Second,
	}
}
