package diag

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"mauicli/internal/fsutil"
	"mauicli/internal/logging"
)

// Packager creates diagnostic bundles
type Packager struct {
	config    *Config
	collector *Collector
	logger    *logging.Logger
}

// NewPackager creates a new bundle packager
func NewPackager(config *Config, logger *logging.Logger) *Packager {
	return &Packager{
		config:    config,
		collector: NewCollector(config, logger),
		logger:    logger,
	}
}

// CreateBundle writes a zip with the report, effective manifest, redacted
// config, system info and a bundle manifest of per-file digests.
func (p *Packager) CreateBundle(snap Snapshot) (string, error) {
	p.logger.Info("diag.bundle.start", "Creating diagnostic bundle", map[string]interface{}{
		"output": p.config.OutputPath,
		"run_id": snap.RunID,
	})

	allFiles := make(map[string][]byte)

	report, err := p.collector.CollectReport(snap)
	if err != nil {
		return "", err
	}
	for path, content := range report {
		allFiles[path] = content
	}

	config, err := p.collector.CollectConfig()
	if err != nil {
		p.logger.Error("diag.bundle.config_error", "Failed to collect config", map[string]interface{}{
			"error": err.Error(),
		})
	}
	for path, content := range config {
		allFiles[path] = content
	}

	sysInfo, err := p.collector.CollectSystemInfo(snap)
	if err != nil {
		p.logger.Error("diag.bundle.sysinfo_error", "Failed to collect system info", map[string]interface{}{
			"error": err.Error(),
		})
	}
	for path, content := range sysInfo {
		allFiles[path] = content
	}

	manifestJSON, err := json.MarshalIndent(p.createManifest(snap.RunID, allFiles), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal bundle manifest: %w", err)
	}
	allFiles["bundle_manifest.json"] = manifestJSON

	if err := p.createZIP(allFiles); err != nil {
		return "", fmt.Errorf("failed to create ZIP: %w", err)
	}

	p.logger.Info("diag.bundle.complete", "Diagnostic bundle created", map[string]interface{}{
		"output":     p.config.OutputPath,
		"file_count": len(allFiles),
	})
	return p.config.OutputPath, nil
}

func (p *Packager) createManifest(runID string, files map[string][]byte) *BundleManifest {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	m := &BundleManifest{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Host:      hostname,
		Version:   p.config.Version,
		RunID:     runID,
		Files:     make([]BundleFile, 0, len(files)),
	}
	for _, path := range sortedKeys(files) {
		content := files[path]
		m.Files = append(m.Files, BundleFile{
			Path:      path,
			SizeBytes: int64(len(content)),
			SHA256:    CalculateSHA256(content),
			BLAKE3:    CalculateBLAKE3(content),
		})
	}
	return m
}

func (p *Packager) createZIP(files map[string][]byte) (err error) {
	zipFile, err := os.Create(p.config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer fsutil.CloseWithError(zipFile.Close, p.logger, p.config.OutputPath)

	zipWriter := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to finalize ZIP: %w", closeErr)
		}
	}()

	for _, path := range sortedKeys(files) {
		writer, err := zipWriter.Create(path)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", path, err)
		}
		if _, err := writer.Write(files[path]); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func sortedKeys(files map[string][]byte) []string {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
