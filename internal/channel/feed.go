package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"mauicli/internal/logging"
)

const packageBaseAddressType = "PackageBaseAddress/3.0.0"

// Fetcher retrieves a remote JSON document
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// FeedClient reads package versions from NuGet v3 feeds
type FeedClient struct {
	fetcher Fetcher
	logger  *logging.Logger
	// base addresses resolved per service index
	bases map[string]string
}

// NewFeedClient creates a feed client
func NewFeedClient(fetcher Fetcher, logger *logging.Logger) *FeedClient {
	return &FeedClient{
		fetcher: fetcher,
		logger:  logger,
		bases:   make(map[string]string),
	}
}

type serviceIndex struct {
	Resources []struct {
		ID   string `json:"@id"`
		Type string `json:"@type"`
	} `json:"resources"`
}

type versionIndex struct {
	Versions []string `json:"versions"`
}

// Versions lists every version the feed holds for id
func (c *FeedClient) Versions(ctx context.Context, feedURL, id string) ([]string, error) {
	base, err := c.baseAddress(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/index.json", strings.TrimRight(base, "/"), strings.ToLower(id))
	data, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", id, err)
	}

	var idx versionIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse version index for %s: %w", id, err)
	}
	return idx.Versions, nil
}

// LatestVersion returns the newest version of id on the channel that suits
// tfm, or "" when the feed has none.
func (c *FeedClient) LatestVersion(ctx context.Context, ch Channel, id, tfm string) (string, error) {
	versions, err := c.Versions(ctx, ch.FeedURL, id)
	if err != nil {
		return "", err
	}

	latest := Highest(FilterVersions(versions, ch.Type, tfm))
	c.logger.Debug("channel.feed.latest", "Resolved latest package version", map[string]interface{}{
		"channel":    ch.Name,
		"package":    id,
		"candidates": len(versions),
		"latest":     latest,
	})
	return latest, nil
}

func (c *FeedClient) baseAddress(ctx context.Context, feedURL string) (string, error) {
	if base, ok := c.bases[feedURL]; ok {
		return base, nil
	}

	data, err := c.fetcher.Get(ctx, feedURL)
	if err != nil {
		return "", fmt.Errorf("failed to read service index: %w", err)
	}

	var idx serviceIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return "", fmt.Errorf("failed to parse service index %s: %w", feedURL, err)
	}
	for _, r := range idx.Resources {
		if r.Type == packageBaseAddressType && r.ID != "" {
			c.bases[feedURL] = r.ID
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("service index %s has no %s resource", feedURL, packageBaseAddressType)
}

// FilterVersions keeps the versions a channel would offer for tfm.
// Stable drops prereleases. A net9 framework drops majors of 10 and above;
// a net10 framework keeps only majors of 10 and above when any exist.
// Versions whose major cannot be read survive the framework rules.
func FilterVersions(versions []string, t Type, tfm string) []string {
	var kept []string
	for _, v := range versions {
		if t == Stable && strings.Contains(v, "-") {
			continue
		}
		kept = append(kept, v)
	}

	tfm = strings.ToLower(tfm)
	switch {
	case strings.HasPrefix(tfm, "net9"):
		var out []string
		for _, v := range kept {
			if major, ok := majorOf(v); !ok || major < 10 {
				out = append(out, v)
			}
		}
		return out
	case strings.HasPrefix(tfm, "net10"):
		var out []string
		for _, v := range kept {
			if major, ok := majorOf(v); ok && major >= 10 {
				out = append(out, v)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return kept
}

// Highest returns the greatest semantic version, ignoring unparsable entries
func Highest(versions []string) string {
	best := ""
	for _, v := range versions {
		if !semver.IsValid("v" + v) {
			continue
		}
		if best == "" || semver.Compare("v"+v, "v"+best) > 0 {
			best = v
		}
	}
	return best
}

// Compare orders two NuGet versions, falling back to string order when
// either is not a semantic version
func Compare(a, b string) int {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return strings.Compare(a, b)
}

func majorOf(version string) (int, bool) {
	v := "v" + version
	if !semver.IsValid(v) {
		return 0, false
	}
	var major int
	if _, err := fmt.Sscanf(semver.Major(v), "v%d", &major); err != nil {
		return 0, false
	}
	return major, true
}
