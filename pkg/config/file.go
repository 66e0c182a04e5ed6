package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
)

// EnvPrefix is the prefix for environment-variable overrides, e.g.
// CLINVAR_CLINVAR_SOURCE_URL or CLINVAR_REGISTRY_PUSH_ENABLED.
const EnvPrefix = "CLINVAR"

// Load reads configuration from a YAML file on top of the defaults, then
// applies environment-variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &models.NotFoundError{Path: filename}
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	sections := map[string]interface{}{
		"CLINVAR":  &cfg.ClinVar,
		"QUALITY":  &cfg.Quality,
		"REGISTRY": &cfg.Registry,
		"HISTORY":  &cfg.History,
		"LOGGING":  &cfg.Logging,
	}
	for name, section := range sections {
		if err := envconfig.Process(EnvPrefix+"_"+name, section); err != nil {
			return fmt.Errorf("failed to apply %s environment overrides: %w", name, err)
		}
	}
	return nil
}

// Normalize trims whitespace from string fields.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.ClinVar.SourceURL = strings.TrimSpace(c.ClinVar.SourceURL)
	c.ClinVar.ChecksumURL = strings.TrimSpace(c.ClinVar.ChecksumURL)
	c.ClinVar.DownloadDir = strings.TrimSpace(c.ClinVar.DownloadDir)
	c.ClinVar.Timeout = strings.TrimSpace(c.ClinVar.Timeout)
	c.Quality.OutputDir = strings.TrimSpace(c.Quality.OutputDir)
	c.Registry.Bucket = strings.TrimSpace(c.Registry.Bucket)
	c.Registry.PackageName = strings.TrimSpace(c.Registry.PackageName)
	c.Registry.URL = strings.TrimSuffix(strings.TrimSpace(c.Registry.URL), "/")
	c.Registry.Timeout = strings.TrimSpace(c.Registry.Timeout)
	c.History.DatabasePath = strings.TrimSpace(c.History.DatabasePath)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.LogDir = strings.TrimSpace(c.Logging.LogDir)
}
