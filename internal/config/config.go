package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"mauicli/internal/configdir"
)

const homeConfigFile = "config.yaml"

// Load loads and merges configuration.
// Priority: defaults < $MAUI_HOME/config.yaml < explicitPath (when non-empty)
func Load(explicitPath string) (Config, error) {
	cfg := DefaultConfig()

	if err := mergeConfigFile(&cfg, HomeConfigPath()); err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to load home config: %w", err)
		}
		// Home config not existing is OK, continue with defaults
	}

	if explicitPath != "" {
		if err := mergeConfigFile(&cfg, explicitPath); err != nil {
			return cfg, fmt.Errorf("failed to load config from %s: %w", explicitPath, err)
		}
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// LoadFrom loads configuration from a specific file path only
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := mergeConfigFile(&cfg, path); err != nil {
		return cfg, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// HomeConfigPath returns the path of the config file inside the tool home
func HomeConfigPath() string {
	return filepath.Join(configdir.HomeDir(), homeConfigFile)
}

// ProbeTimeout returns the configured per-probe timeout, zero when unbounded
func (c *Config) ProbeTimeout() time.Duration {
	if c.Probe.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Probe.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// CacheEnabled reports whether remote manifests are cached
func (c *Config) CacheEnabled() bool {
	return c.Manifest.Cache == nil || *c.Manifest.Cache
}

// ResolvedHivesDir returns hives_dir or the default under the tool home
func (c *Config) ResolvedHivesDir() string {
	if c.HivesDir != "" {
		return c.HivesDir
	}
	return configdir.HivesDir()
}

// ResolvedCacheDir returns cache_dir or the default under the tool home
func (c *Config) ResolvedCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return configdir.CacheDir()
}

// mergeConfigFile reads a YAML file and merges it into the existing config
func mergeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path comes from the tool home or the --config flag
	if err != nil {
		return err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfig(cfg, &overlay)

	return nil
}

// mergeConfig merges non-zero values from src into dst
func mergeConfig(dst, src *Config) {
	if src.Manifest.URL != "" {
		dst.Manifest.URL = src.Manifest.URL
	}
	if src.Manifest.Cache != nil {
		v := *src.Manifest.Cache
		dst.Manifest.Cache = &v
	}

	if src.Probe.Timeout != "" {
		dst.Probe.Timeout = src.Probe.Timeout
	}

	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.File != "" {
		dst.Logging.File = src.Logging.File
	}

	if src.GitHub.Owner != "" {
		dst.GitHub.Owner = src.GitHub.Owner
	}
	if src.GitHub.Repo != "" {
		dst.GitHub.Repo = src.GitHub.Repo
	}
	if src.GitHub.APIBase != "" {
		dst.GitHub.APIBase = src.GitHub.APIBase
	}

	if src.Upgrade.DefaultChannel != "" {
		dst.Upgrade.DefaultChannel = src.Upgrade.DefaultChannel
	}

	if src.EnvFile != "" {
		dst.EnvFile = src.EnvFile
	}
	if src.HivesDir != "" {
		dst.HivesDir = src.HivesDir
	}
	if src.CacheDir != "" {
		dst.CacheDir = src.CacheDir
	}
}

// formatValidationErrors formats validation errors for display
func formatValidationErrors(errors []ValidationError) string {
	if len(errors) == 0 {
		return ""
	}
	if len(errors) == 1 {
		return errors[0].Error()
	}
	result := fmt.Sprintf("%d validation errors:\n", len(errors))
	for _, err := range errors {
		result += "  - " + err.Error() + "\n"
	}
	return result
}
