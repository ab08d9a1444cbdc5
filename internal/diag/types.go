package diag

import "time"

// BundleManifest indexes the files of a diagnostic bundle
type BundleManifest struct {
	Timestamp string       `json:"timestamp"`
	Host      string       `json:"host"`
	Version   string       `json:"maui_version"`
	RunID     string       `json:"run_id"`
	Files     []BundleFile `json:"files"`
}

// BundleFile is one entry of the bundle with its digests
type BundleFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
	BLAKE3    string `json:"blake3"`
}

// Config configures bundle creation
type Config struct {
	ConfigPath    string
	OutputPath    string
	IncludeConfig bool
	Version       string
}

// NewConfig creates a default bundle config
func NewConfig(version, configPath string) *Config {
	return &Config{
		ConfigPath:    configPath,
		OutputPath:    generateOutputPath(),
		IncludeConfig: true,
		Version:       version,
	}
}

func generateOutputPath() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	return "maui-diag-" + timestamp + ".zip"
}
