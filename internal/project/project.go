// Package project locates MAUI projects and reads their target framework and
// package references.
package project

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MauiPackagePrefix identifies MAUI package references
const MauiPackagePrefix = "Microsoft.Maui"

// ErrNotFound is returned when no project file can be located
var ErrNotFound = errors.New("no .csproj file found")

var frameworkPattern = regexp.MustCompile(`(net\d+\.\d+)`)

// Locate finds the project in dir: the single *.csproj, else the first whose
// name mentions MAUI, else the first in name order.
func Locate(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "*.csproj")
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
	}
	sort.Strings(matches)

	pick := matches[0]
	for _, m := range matches {
		if strings.Contains(strings.ToLower(m), "maui") {
			pick = m
			break
		}
	}
	return filepath.Join(dir, pick), nil
}

// Resolve returns explicit when given and present, otherwise Locate(dir)
func Resolve(explicit, dir string) (string, error) {
	if explicit == "" {
		return Locate(dir)
	}
	info, err := os.Stat(explicit)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, explicit)
	}
	return explicit, nil
}

// Reference is one PackageReference
type Reference struct {
	ID      string
	Version string
}

// Project is the subset of a .csproj the tool reads
type Project struct {
	Path            string
	TargetFramework string
	References      []Reference
}

// MauiReferences returns references whose id starts with Microsoft.Maui
func (p *Project) MauiReferences() []Reference {
	var out []Reference
	for _, r := range p.References {
		if IsMauiPackage(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// IsMauiPackage reports whether id is a Microsoft.Maui* package
func IsMauiPackage(id string) bool {
	return len(id) >= len(MauiPackagePrefix) && strings.EqualFold(id[:len(MauiPackagePrefix)], MauiPackagePrefix)
}

type csproj struct {
	PropertyGroups []struct {
		TargetFramework  string `xml:"TargetFramework"`
		TargetFrameworks string `xml:"TargetFrameworks"`
	} `xml:"PropertyGroup"`
	ItemGroups []struct {
		PackageReferences []struct {
			Include      string `xml:"Include,attr"`
			Version      string `xml:"Version,attr"`
			VersionChild string `xml:"Version"`
		} `xml:"PackageReference"`
	} `xml:"ItemGroup"`
}

// Load reads a project file
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected project file
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	return Parse(path, data)
}

// Parse reads project XML. TargetFramework wins over TargetFrameworks, whose
// first entry is used; both are reduced to the netN.M moniker.
func Parse(path string, data []byte) (*Project, error) {
	var doc csproj
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}

	p := &Project{Path: path}

	var single, multi string
	for _, pg := range doc.PropertyGroups {
		if single == "" && strings.TrimSpace(pg.TargetFramework) != "" {
			single = strings.TrimSpace(pg.TargetFramework)
		}
		if multi == "" && strings.TrimSpace(pg.TargetFrameworks) != "" {
			multi = strings.TrimSpace(pg.TargetFrameworks)
		}
	}
	switch {
	case single != "":
		p.TargetFramework = FrameworkMoniker(single)
	case multi != "":
		for _, tfm := range strings.Split(multi, ";") {
			if tfm = strings.TrimSpace(tfm); tfm != "" {
				p.TargetFramework = FrameworkMoniker(tfm)
				break
			}
		}
	}

	for _, ig := range doc.ItemGroups {
		for _, ref := range ig.PackageReferences {
			version := ref.Version
			if version == "" {
				version = strings.TrimSpace(ref.VersionChild)
			}
			if ref.Include == "" || version == "" {
				continue
			}
			p.References = append(p.References, Reference{ID: ref.Include, Version: version})
		}
	}
	return p, nil
}

// FrameworkMoniker extracts net9.0 from values such as net9.0-android or
// $(TargetFrameworks);net9.0-ios. Empty when none is present.
func FrameworkMoniker(tfm string) string {
	if m := frameworkPattern.FindStringSubmatch(tfm); m != nil {
		return m[1]
	}
	return ""
}
