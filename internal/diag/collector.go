package diag

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/zeebo/blake3"

	"mauicli/internal/check"
	"mauicli/internal/host"
	"mauicli/internal/logging"
	"mauicli/internal/manifest"
)

// Snapshot is the outcome of one check run to be bundled
type Snapshot struct {
	RunID    string
	Host     host.Info
	Manifest *manifest.Manifest
	Source   manifest.Source
	Results  []check.Result
}

// Collector gathers bundle artifacts
type Collector struct {
	config   *Config
	redactor *Redactor
	logger   *logging.Logger
}

// NewCollector creates a new bundle collector
func NewCollector(config *Config, logger *logging.Logger) *Collector {
	return &Collector{
		config:   config,
		redactor: NewRedactor(),
		logger:   logger,
	}
}

// CollectReport serializes the check records and the effective manifest
func (c *Collector) CollectReport(snap Snapshot) (map[string][]byte, error) {
	files := make(map[string][]byte)

	results := snap.Results
	if results == nil {
		results = []check.Result{}
	}
	report, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return files, fmt.Errorf("failed to marshal report: %w", err)
	}
	files["report.json"] = report

	if snap.Manifest != nil {
		doc, err := json.MarshalIndent(snap.Manifest, "", "  ")
		if err != nil {
			return files, fmt.Errorf("failed to marshal manifest: %w", err)
		}
		files["manifest.json"] = doc
	}

	c.logger.Info("diag.collect.report.complete", "Report collection complete", map[string]interface{}{
		"records": len(results),
	})
	return files, nil
}

// CollectConfig gathers and redacts the configuration file
func (c *Collector) CollectConfig() (map[string][]byte, error) {
	if !c.config.IncludeConfig || c.config.ConfigPath == "" {
		return nil, nil
	}

	files := make(map[string][]byte)

	if _, err := os.Stat(c.config.ConfigPath); os.IsNotExist(err) {
		c.logger.Debug("diag.collect.config.missing", "Config file not found", map[string]interface{}{
			"path": c.config.ConfigPath,
		})
		return files, nil
	}

	content, err := os.ReadFile(c.config.ConfigPath)
	if err != nil {
		c.logger.Error("diag.collect.config.read_error", "Failed to read config file", map[string]interface{}{
			"path":  c.config.ConfigPath,
			"error": err.Error(),
		})
		return files, fmt.Errorf("failed to read config: %w", err)
	}

	files["config/config.yaml"] = []byte(c.redactor.Redact(string(content)))

	c.logger.Info("diag.collect.config.complete", "Config collection complete", map[string]interface{}{
		"redacted": true,
	})
	return files, nil
}

// CollectSystemInfo gathers host and tool information
func (c *Collector) CollectSystemInfo(snap Snapshot) (map[string][]byte, error) {
	files := make(map[string][]byte)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	sysInfo := map[string]interface{}{
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"host":            hostname,
		"platform":        snap.Host.Name,
		"arch":            snap.Host.Arch,
		"os_version":      snap.Host.OS.String(),
		"go_version":      runtime.Version(),
		"maui_version":    c.config.Version,
		"run_id":          snap.RunID,
		"manifest_source": string(snap.Source),
		"manifest_tool":   snap.Manifest.ToolVersion(),
	}

	sysInfoJSON, err := json.MarshalIndent(sysInfo, "", "  ")
	if err != nil {
		return files, fmt.Errorf("failed to marshal system info: %w", err)
	}
	files["system_info.json"] = sysInfoJSON

	c.logger.Debug("diag.collect.sysinfo.complete", "System info collection complete", nil)
	return files, nil
}

// CalculateSHA256 computes the SHA256 hex digest of data
func CalculateSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// CalculateBLAKE3 computes the BLAKE3 hex digest of data
func CalculateBLAKE3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
