package manifest

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"mauicli/internal/fsutil"
	"mauicli/internal/logging"
)

// Source identifies which tier produced a manifest
type Source string

const (
	// SourceRemote is a fresh HTTP(S) fetch
	SourceRemote Source = "remote"
	// SourceFile is a local file path
	SourceFile Source = "file"
	// SourceCache is the cached copy of the last successful fetch of the URL
	SourceCache Source = "cache"
	// SourceBundled is the manifest embedded in the binary
	SourceBundled Source = "bundled"
	// SourceDefault is the hardcoded floor
	SourceDefault Source = "default"
)

// maxManifestSize bounds remote downloads
const maxManifestSize = 4 << 20

// Fetcher retrieves a remote document
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches over net/http
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given request timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Get implements Fetcher. Non-2xx responses are errors.
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer fsutil.CloseWithError(resp.Body.Close, nil, "manifest response body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}

// Loader resolves a manifest through the fallback tiers:
// requested source, cached remote copy, bundled document, hardcoded default.
type Loader struct {
	fetcher    Fetcher
	defaultURL string
	cacheDir   string
	bundled    []byte
	logger     *logging.Logger
}

// NewLoader creates a loader. An empty cacheDir disables the cache tier.
func NewLoader(fetcher Fetcher, defaultURL, cacheDir string, logger *logging.Logger) *Loader {
	return &Loader{
		fetcher:    fetcher,
		defaultURL: defaultURL,
		cacheDir:   cacheDir,
		bundled:    bundledManifest,
		logger:     logger,
	}
}

// WithBundled replaces the bundled document; nil removes that tier
func (l *Loader) WithBundled(data []byte) *Loader {
	l.bundled = data
	return l
}

// Load never fails and never returns nil
func (l *Loader) Load(ctx context.Context, source string) *Manifest {
	m, _ := l.LoadWithSource(ctx, source)
	return m
}

// LoadWithSource is Load that also reports the tier used
func (l *Loader) LoadWithSource(ctx context.Context, source string) (*Manifest, Source) {
	if source == "" {
		source = l.defaultURL
	}

	if source != "" {
		remote := IsRemote(source)
		m, err := l.loadSource(ctx, source, remote)
		if err == nil {
			tier := SourceFile
			if remote {
				tier = SourceRemote
			}
			l.logger.Debug("manifest.load.complete", "Manifest loaded", map[string]interface{}{
				"source": source,
				"tier":   string(tier),
			})
			return m, tier
		}
		l.logger.Debug("manifest.load.fallback", "Manifest source unavailable", map[string]interface{}{
			"source": source,
			"error":  err.Error(),
		})

		if remote {
			if m, err := l.readCache(source); err == nil {
				l.logger.Debug("manifest.load.complete", "Manifest loaded from cache", map[string]interface{}{
					"source": source,
					"tier":   string(SourceCache),
				})
				return m, SourceCache
			} else if !os.IsNotExist(err) {
				l.logger.Debug("manifest.cache.invalid", "Cached manifest unusable", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	if len(l.bundled) > 0 {
		m, err := Parse(l.bundled)
		if err == nil {
			l.logger.Debug("manifest.load.complete", "Using bundled manifest", map[string]interface{}{
				"tier": string(SourceBundled),
			})
			return m, SourceBundled
		}
		l.logger.Debug("manifest.load.fallback", "Bundled manifest invalid", map[string]interface{}{
			"error": err.Error(),
		})
	}

	l.logger.Debug("manifest.load.complete", "Using built-in default manifest", map[string]interface{}{
		"tier": string(SourceDefault),
	})
	return DefaultManifest(), SourceDefault
}

func (l *Loader) loadSource(ctx context.Context, source string, remote bool) (*Manifest, error) {
	var (
		data []byte
		err  error
	)
	if remote {
		if l.fetcher == nil {
			return nil, fmt.Errorf("no fetcher configured for %s", source)
		}
		data, err = l.fetcher.Get(ctx, source)
	} else {
		data, err = os.ReadFile(filepath.Clean(source)) // #nosec G304 -- user-supplied manifest path
	}
	if err != nil {
		return nil, err
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if remote {
		l.writeCache(source, data)
	}
	return m, nil
}

// CachePath returns where the cached copy of url lives, or "" when disabled
func (l *Loader) CachePath(url string) string {
	if l.cacheDir == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(url))
	return filepath.Join(l.cacheDir, "manifest-"+hex.EncodeToString(sum[:])[:16]+".json")
}

func (l *Loader) readCache(url string) (*Manifest, error) {
	path := l.CachePath(url)
	if path == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (l *Loader) writeCache(url string, data []byte) {
	path := l.CachePath(url)
	if path == "" {
		return
	}
	if err := fsutil.AtomicWriteFile(path, data, fsutil.DefaultFilePermissions, l.logger); err != nil {
		l.logger.Debug("manifest.cache.write_failed", "Failed to cache manifest", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}

// IsRemote reports an http:// or https:// prefix, case-insensitively
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
