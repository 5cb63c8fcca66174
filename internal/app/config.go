package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/gridwalk/internal/manifest"
	"github.com/specialistvlad/gridwalk/internal/session"
	"gopkg.in/yaml.v3"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string `yaml:"grid_path"` // hcl file or directory

	Workers         int    `yaml:"workers"`
	Mode            string `yaml:"mode"`
	LogFormat       string `yaml:"log_format"`
	LogLevel        string `yaml:"log_level"`
	HealthcheckPort int    `yaml:"healthcheck_port"`
	MetricsEnabled  bool   `yaml:"metrics_enabled"`
	ManifestFormat  string `yaml:"manifest_format"`

	// RedisAddr enables the Redis manifest store. Empty keeps manifests in
	// memory for the life of the process.
	RedisAddr      string `yaml:"redis_addr"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`
}

// DefaultConfig returns the values used when neither a config file nor a
// flag sets a field.
func DefaultConfig() Config {
	return Config{
		Workers:        10,
		Mode:           string(session.PerSource),
		LogFormat:      "text",
		LogLevel:       "info",
		ManifestFormat: manifest.FormatText,
	}
}

// LoadConfigFile reads a YAML config file on top of DefaultConfig. Unknown
// keys are rejected.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	if cfg.GridPath == "" {
		errs = append(errs, errors.New("GridPath is a required configuration field and cannot be empty"))
	}
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers))
	}
	if _, err := session.ParseMode(cfg.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat))
	}
	if cfg.ManifestFormat != manifest.FormatText && cfg.ManifestFormat != manifest.FormatJSON {
		errs = append(errs, fmt.Errorf("invalid manifest format %q: must be 'text' or 'json'", cfg.ManifestFormat))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
