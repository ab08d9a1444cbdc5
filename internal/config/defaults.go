package config

const (
	// DefaultManifestURL is the published requirements manifest
	DefaultManifestURL = "https://aka.ms/dotnet-maui-check-manifest"
	// DefaultGitHubAPI is the public GitHub REST endpoint
	DefaultGitHubAPI = "https://api.github.com"
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	cache := true
	return Config{
		Manifest: ManifestConfig{
			URL:   DefaultManifestURL,
			Cache: &cache,
		},
		Probe: ProbeConfig{
			Timeout: "0",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		GitHub: GitHubConfig{
			Owner:   "dotnet",
			Repo:    "maui",
			APIBase: DefaultGitHubAPI,
		},
		EnvFile: ".env",
	}
}
