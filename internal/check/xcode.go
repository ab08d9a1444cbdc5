package check

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"mauicli/internal/host"
	"mauicli/internal/manifest"
	"mauicli/internal/workload"
)

const defaultXcodeMajor = 15

var xcodeVersionPattern = regexp.MustCompile(`Xcode\s+([\d.]+)`)

// checkXcode reports the selected Xcode. A version below the minimum is an
// ERROR and takes precedence over the pinned-version WARNING.
func (r *Reconciler) checkXcode(state *run) Result {
	if r.host.Platform != host.MacOS {
		return Result{
			Name:    NameXcode,
			Status:  StatusNotApplicable,
			Message: "Not applicable on this platform",
		}
	}

	selectRes, err := r.runProbe(state, "xcode-select", "-p")
	devPath := strings.TrimSpace(selectRes.Stdout)
	if err != nil || !selectRes.OK() || devPath == "" {
		return Result{
			Name:           NameXcode,
			Status:         StatusError,
			Message:        "Xcode command line tools not found",
			Recommendation: "Install Xcode from the App Store and run: sudo xcode-select --switch /Applications/Xcode.app",
		}
	}

	details := map[string]string{"DeveloperPath": devPath}
	if dep := r.recommended(state, workload.IOSManifestID); dep != nil && dep.XcodeRecommended != "" {
		details["RecommendedXcode"] = dep.XcodeRecommended
	}

	var version string
	if res, err := r.runProbe(state, "xcodebuild", "-version"); err == nil && res.OK() {
		version = ParseXcodeVersion(res.Stdout)
	}
	if version == "" {
		return Result{
			Name:    NameXcode,
			Status:  StatusOK,
			Message: "Found at " + devPath,
			Details: details,
		}
	}
	details["Version"] = version

	spec := state.manifest.Xcode()
	minMajor, minName := xcodeMinimum(spec)
	if major, ok := manifest.MajorOf(version); ok && major < minMajor {
		return Result{
			Name:           NameXcode,
			Status:         StatusError,
			Message:        fmt.Sprintf("Version %s detected. Xcode %s+ required", version, minName),
			Recommendation: fmt.Sprintf("Update Xcode to version %s or later from the App Store", minName),
			Details:        details,
		}
	}

	pin := spec.ExactVersionName
	if pin == "" {
		pin = spec.ExactVersion
	}
	if pin != "" && !sameVersion(version, pin) {
		return Result{
			Name:           NameXcode,
			Status:         StatusWarning,
			Message:        fmt.Sprintf("Version %s found. Version %s is recommended for this .NET MAUI version.", version, pin),
			Recommendation: fmt.Sprintf("Update Xcode to version %s for optimal compatibility", pin),
			Details:        details,
		}
	}

	return Result{
		Name:    NameXcode,
		Status:  StatusOK,
		Message: fmt.Sprintf("Version %s at %s", version, devPath),
		Details: details,
	}
}

// ParseXcodeVersion reads the version from the first line of `xcodebuild -version`
func ParseXcodeVersion(output string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	m := xcodeVersionPattern.FindStringSubmatch(first)
	if m == nil {
		return ""
	}
	return strings.TrimRight(m[1], ".")
}

func xcodeMinimum(spec manifest.Xcode) (int, string) {
	major := defaultXcodeMajor
	if m, ok := manifest.MajorOf(spec.MinimumVersion); ok {
		major = m
	}
	name := spec.MinimumVersionName
	if name == "" {
		name = fmt.Sprintf("%d.0", major)
	}
	return major, name
}

// sameVersion compares dotted versions numerically so "15.0" matches "15.0.0"
func sameVersion(a, b string) bool {
	va, vb := "v"+strings.TrimSpace(a), "v"+strings.TrimSpace(b)
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb) == 0
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
