package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const (
	DefaultPrompt      = "> "
	DefaultHistorySize = 100
	DefaultMaxJobs     = 64
	DefaultMaxArgs     = 64
)

// Config holds the shell's tunables. Every field is optional in the
// file; zero or negative capacities fall back to the defaults.
type Config struct {
	Prompt      string `yaml:"prompt"`
	HistorySize int    `yaml:"history_size"`
	MaxJobs     int    `yaml:"max_jobs"`
	MaxArgs     int    `yaml:"max_args"`
	HomeDir     string `yaml:"home_dir"`
}

func Default() *Config {
	return &Config{
		Prompt:      DefaultPrompt,
		HistorySize: DefaultHistorySize,
		MaxJobs:     DefaultMaxJobs,
		MaxArgs:     DefaultMaxArgs,
	}
}

// DefaultPath is ~/.gosh.yml, or a working-directory fallback when the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gosh.yml"
	}
	return filepath.Join(home, ".gosh.yml")
}

// Load reads the config file at path. A missing file is not an error;
// the shell starts with defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fill(cfg)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fill(cfg)
}

func fill(cfg *Config) (*Config, error) {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = DefaultMaxJobs
	}
	if cfg.MaxArgs <= 0 {
		cfg.MaxArgs = DefaultMaxArgs
	}
	if cfg.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determine home directory: %w", err)
		}
		cfg.HomeDir = home
	}
	return cfg, nil
}
