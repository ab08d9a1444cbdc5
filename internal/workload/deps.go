package workload

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"mauicli/internal/logging"
)

// ErrNoDependencies is returned when no WorkloadDependencies.json exists for a workload
var ErrNoDependencies = errors.New("workload dependencies not found")

const dependenciesFile = "WorkloadDependencies.json"

// Workload manifest ids that ship dependency files
const (
	AndroidManifestID     = "microsoft.net.sdk.android"
	IOSManifestID         = "microsoft.net.sdk.ios"
	MacCatalystManifestID = "microsoft.net.sdk.maccatalyst"
	MacOSManifestID       = "microsoft.net.sdk.macos"
	TvOSManifestID        = "microsoft.net.sdk.tvos"
	MauiManifestID        = "microsoft.net.sdk.maui"
)

// AllManifestIDs lists the workloads ResolveAll inspects, in order
var AllManifestIDs = []string{
	AndroidManifestID,
	IOSManifestID,
	MacCatalystManifestID,
	MacOSManifestID,
	TvOSManifestID,
	MauiManifestID,
}

// Dependency is what a workload declares about its external toolchain
type Dependency struct {
	Workload         string              `json:"workload"`
	Alias            string              `json:"alias,omitempty"`
	Version          string              `json:"version,omitempty"`
	XcodeVersion     string              `json:"xcodeVersion,omitempty"`
	XcodeRecommended string              `json:"xcodeRecommended,omitempty"`
	SDKVersion       string              `json:"sdkVersion,omitempty"`
	JDKVersion       string              `json:"jdkVersion,omitempty"`
	JDKRecommended   string              `json:"jdkRecommended,omitempty"`
	AndroidPackages  []AndroidSDKPackage `json:"androidPackages,omitempty"`
}

// AndroidSDKPackage is one Android SDK package a workload asks for
type AndroidSDKPackage struct {
	ID                 string `json:"id"`
	Description        string `json:"description"`
	RecommendedVersion string `json:"recommendedVersion,omitempty"`
	Optional           bool   `json:"optional,omitempty"`
}

// DependencyResolver reads WorkloadDependencies.json files from the SDK's
// sdk-manifests directory.
type DependencyResolver struct {
	dotnetRoot string
	rid        string
	logger     *logging.Logger
}

// NewDependencyResolver creates a resolver rooted at dotnetRoot. rid selects
// per-host package ids (win-x64, mac-arm64, mac-x64, linux-x64).
func NewDependencyResolver(dotnetRoot, rid string, logger *logging.Logger) *DependencyResolver {
	return &DependencyResolver{
		dotnetRoot: dotnetRoot,
		rid:        rid,
		logger:     logger,
	}
}

// DefaultDotnetRoot is used when DOTNET_ROOT is unset
func DefaultDotnetRoot(windows bool) string {
	if windows {
		return `C:\Program Files\dotnet`
	}
	return "/usr/local/share/dotnet"
}

// FeatureBands lists the sdk-manifests band directories to try for an SDK
// version, most specific first. Versions without three parts yield nil.
func FeatureBands(sdkVersion string) []string {
	parts := strings.Split(strings.TrimSpace(sdkVersion), ".")
	if len(parts) < 3 {
		return nil
	}
	majorMinor := parts[0] + "." + parts[1]
	patch, _, _ := strings.Cut(parts[2], "-")

	return []string{
		majorMinor + "." + patch,
		majorMinor + ".100",
		majorMinor + ".100-rc.2",
		majorMinor + ".100-rc.1",
		majorMinor + ".100-preview.7",
	}
}

// Resolve returns the dependencies declared by one workload manifest
func (r *DependencyResolver) Resolve(workloadID, sdkVersion string) (*Dependency, error) {
	dir, err := r.manifestDir(workloadID, sdkVersion)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, dependenciesFile)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", workloadID, ErrNoDependencies)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	dep, err := parseDependencies(workloadID, data, r.rid)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return dep, nil
}

// ResolveAll resolves every known workload, skipping those without a file
func (r *DependencyResolver) ResolveAll(sdkVersion string) []Dependency {
	var deps []Dependency
	for _, id := range AllManifestIDs {
		dep, err := r.Resolve(id, sdkVersion)
		if err != nil {
			if !errors.Is(err, ErrNoDependencies) {
				r.logger.Debug("workload.deps.failed", "Failed to resolve workload dependencies", map[string]interface{}{
					"workload": id,
					"error":    err.Error(),
				})
			}
			continue
		}
		deps = append(deps, *dep)
	}
	return deps
}

func (r *DependencyResolver) manifestDir(workloadID, sdkVersion string) (string, error) {
	root := filepath.Join(r.dotnetRoot, "sdk-manifests")
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s: %w", root, ErrNoDependencies)
	}

	for _, band := range FeatureBands(sdkVersion) {
		bandDir := filepath.Join(root, band, strings.ToLower(workloadID))
		entries, err := os.ReadDir(bandDir)
		if err != nil {
			continue
		}
		var versions []string
		for _, e := range entries {
			if e.IsDir() {
				versions = append(versions, e.Name())
			}
		}
		if len(versions) == 0 {
			continue
		}
		sortVersionsDescending(versions)
		return filepath.Join(bandDir, versions[0]), nil
	}

	return "", fmt.Errorf("%s for SDK %s: %w", workloadID, sdkVersion, ErrNoDependencies)
}

// sortVersionsDescending orders directory names newest first. Valid semantic
// versions compare semantically; anything else falls back to string order.
func sortVersionsDescending(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		vi, vj := "v"+versions[i], "v"+versions[j]
		if semver.IsValid(vi) && semver.IsValid(vj) {
			return semver.Compare(vi, vj) > 0
		}
		return versions[i] > versions[j]
	})
}

type dependencyNode struct {
	Workload struct {
		Version string   `json:"version"`
		Alias   []string `json:"alias"`
	} `json:"workload"`
	Xcode struct {
		Version            string `json:"version"`
		RecommendedVersion string `json:"recommendedVersion"`
	} `json:"xcode"`
	JDK struct {
		Version            string `json:"version"`
		RecommendedVersion string `json:"recommendedVersion"`
	} `json:"jdk"`
	AndroidSDK struct {
		Packages []struct {
			Desc       string      `json:"desc"`
			Optional   interface{} `json:"optional"`
			SDKPackage *struct {
				ID                 json.RawMessage `json:"id"`
				RecommendedVersion string          `json:"recommendedVersion"`
			} `json:"sdkPackage"`
		} `json:"packages"`
	} `json:"androidsdk"`
	SDK struct {
		Version string `json:"version"`
	} `json:"sdk"`
}

func parseDependencies(workloadID string, data []byte, rid string) (*Dependency, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	raw, ok := pickWorkloadNode(top, workloadID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", workloadID, ErrNoDependencies)
	}

	var node dependencyNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}

	dep := &Dependency{
		Workload:         workloadID,
		Version:          node.Workload.Version,
		XcodeVersion:     node.Xcode.Version,
		XcodeRecommended: node.Xcode.RecommendedVersion,
		JDKVersion:       node.JDK.Version,
		JDKRecommended:   node.JDK.RecommendedVersion,
		SDKVersion:       node.SDK.Version,
	}
	if len(node.Workload.Alias) > 0 {
		dep.Alias = node.Workload.Alias[0]
	}

	for _, pkg := range node.AndroidSDK.Packages {
		if pkg.SDKPackage == nil {
			continue
		}
		id := packageID(pkg.SDKPackage.ID, rid)
		if id == "" {
			continue
		}
		desc := pkg.Desc
		if desc == "" {
			desc = id
		}
		dep.AndroidPackages = append(dep.AndroidPackages, AndroidSDKPackage{
			ID:                 id,
			Description:        desc,
			RecommendedVersion: pkg.SDKPackage.RecommendedVersion,
			Optional:           isTrue(pkg.Optional),
		})
	}
	return dep, nil
}

// pickWorkloadNode prefers the key naming the workload; dependency files
// normally hold a single top-level key.
func pickWorkloadNode(top map[string]json.RawMessage, workloadID string) (json.RawMessage, bool) {
	for key, raw := range top {
		if strings.EqualFold(key, workloadID) {
			return raw, true
		}
	}
	if len(top) == 0 {
		return nil, false
	}
	keys := make([]string, 0, len(top))
	for key := range top {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return top[keys[0]], true
}

// packageID reads an id that is either a string or an object keyed by rid
func packageID(raw json.RawMessage, rid string) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var perHost map[string]string
	if err := json.Unmarshal(raw, &perHost); err == nil {
		return perHost[rid]
	}
	return ""
}

func isTrue(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(x, "true")
	default:
		return false
	}
}
