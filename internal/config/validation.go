package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// KnownChannels lists the channel names accepted by upgrade.default_channel
var KnownChannels = []string{"net9-stable", "net10-stable", "net9-nightly", "net10-nightly"}

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateManifest()...)
	errors = append(errors, c.validateProbe()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateGitHub()...)
	errors = append(errors, c.validateUpgrade()...)

	return errors
}

func (c *Config) validateManifest() []ValidationError {
	u := c.Manifest.URL
	if u == "" || !strings.Contains(u, "://") {
		// Local paths are allowed
		return nil
	}
	if isHTTPURL(u) {
		return nil
	}

	return []ValidationError{{
		Path:    "manifest.url",
		Message: fmt.Sprintf("must be an http(s) URL or a file path, got '%s'", u),
	}}
}

func (c *Config) validateProbe() []ValidationError {
	if c.Probe.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(c.Probe.Timeout)
	if err == nil && d >= 0 {
		return nil
	}

	return []ValidationError{{
		Path:    "probe.timeout",
		Message: fmt.Sprintf("must be a non-negative duration like '30s', got '%s'", c.Probe.Timeout),
	}}
}

func (c *Config) validateLogging() []ValidationError {
	validLevels := []string{"debug", "info", "warn", "error"}
	if contains(validLevels, c.Logging.Level) {
		return nil
	}

	return []ValidationError{{
		Path:    "logging.level",
		Message: fmt.Sprintf("must be one of %v, got '%s'", validLevels, c.Logging.Level),
	}}
}

func (c *Config) validateGitHub() []ValidationError {
	var errors []ValidationError

	if c.GitHub.APIBase != "" && !isHTTPURL(c.GitHub.APIBase) {
		errors = append(errors, ValidationError{
			Path:    "github.api_base",
			Message: fmt.Sprintf("must be an http(s) URL, got '%s'", c.GitHub.APIBase),
		})
	}
	if strings.Contains(c.GitHub.Owner, "/") {
		errors = append(errors, ValidationError{
			Path:    "github.owner",
			Message: fmt.Sprintf("must not contain '/', got '%s'", c.GitHub.Owner),
		})
	}
	if strings.Contains(c.GitHub.Repo, "/") {
		errors = append(errors, ValidationError{
			Path:    "github.repo",
			Message: fmt.Sprintf("must not contain '/', got '%s'", c.GitHub.Repo),
		})
	}

	return errors
}

func (c *Config) validateUpgrade() []ValidationError {
	if c.Upgrade.DefaultChannel == "" || contains(KnownChannels, c.Upgrade.DefaultChannel) {
		return nil
	}

	return []ValidationError{{
		Path:    "upgrade.default_channel",
		Message: fmt.Sprintf("must be one of %v, got '%s'", KnownChannels, c.Upgrade.DefaultChannel),
	}}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
