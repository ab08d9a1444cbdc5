package nuget

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/mod/semver"
)

// Package is a .nupkg file found on disk
type Package struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

// ScanPackages finds Microsoft.Maui* packages anywhere under dir. Symbol
// packages and files whose name carries no version are skipped.
func ScanPackages(dir string) ([]Package, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.nupkg")
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var out []Package
	for _, m := range matches {
		name := filepath.Base(m)
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, "microsoft.maui") || strings.HasSuffix(lower, ".symbols.nupkg") {
			continue
		}
		id, version, ok := SplitFileName(name)
		if !ok {
			continue
		}
		out = append(out, Package{ID: id, Version: version, Path: filepath.Join(dir, filepath.FromSlash(m))})
	}

	sort.Slice(out, func(i, j int) bool {
		if !strings.EqualFold(out[i].ID, out[j].ID) {
			return strings.ToLower(out[i].ID) < strings.ToLower(out[j].ID)
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}

// SplitFileName splits Microsoft.Maui.Core.9.0.0-preview.1.nupkg into id and
// version at the first dot-separated segment that starts with a digit.
func SplitFileName(name string) (id, version string, ok bool) {
	base := name
	if strings.HasSuffix(strings.ToLower(base), ".nupkg") {
		base = base[:len(base)-len(".nupkg")]
	}

	parts := strings.Split(base, ".")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" && parts[i][0] >= '0' && parts[i][0] <= '9' {
			return strings.Join(parts[:i], "."), strings.Join(parts[i:], "."), true
		}
	}
	return "", "", false
}

// Latest returns the highest version per package id, keyed by lower-case id
func Latest(pkgs []Package) map[string]Package {
	out := make(map[string]Package)
	for _, p := range pkgs {
		key := strings.ToLower(p.ID)
		cur, ok := out[key]
		if !ok || newer(p.Version, cur.Version) {
			out[key] = p
		}
	}
	return out
}

func newer(a, b string) bool {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb) > 0
	}
	return a > b
}
