package config

// Config represents the complete maui tool configuration
type Config struct {
	Manifest ManifestConfig `yaml:"manifest"`
	Probe    ProbeConfig    `yaml:"probe"`
	Logging  LoggingConfig  `yaml:"logging"`
	GitHub   GitHubConfig   `yaml:"github"`
	Upgrade  UpgradeConfig  `yaml:"upgrade"`
	EnvFile  string         `yaml:"env_file"`
	HivesDir string         `yaml:"hives_dir"`
	CacheDir string         `yaml:"cache_dir"`
}

// ManifestConfig controls where the requirements manifest comes from
type ManifestConfig struct {
	URL string `yaml:"url"`
	// Cache is a pointer so an absent key in an overlay file keeps the lower layer's value
	Cache *bool `yaml:"cache"`
}

// ProbeConfig controls external command execution
type ProbeConfig struct {
	// Timeout is a Go duration string; empty or "0" means no timeout
	Timeout string `yaml:"timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// GitHubConfig points artifact discovery at a repository
type GitHubConfig struct {
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
	APIBase string `yaml:"api_base"`
}

// UpgradeConfig represents upgrade command defaults
type UpgradeConfig struct {
	DefaultChannel string `yaml:"default_channel"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}
