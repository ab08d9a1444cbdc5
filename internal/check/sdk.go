package check

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mauicli/internal/manifest"
)

const minimumSDKMajor = 8

func (r *Reconciler) checkDotNetSDK(state *run) Result {
	res, err := r.runProbe(state, "dotnet", "--version")
	if err != nil {
		return Result{
			Name:           NameDotNetSDK,
			Status:         StatusError,
			Message:        "Not found",
			Recommendation: fmt.Sprintf("Install .NET %d or later from https://dot.net. Error: %v", minimumSDKMajor, err),
		}
	}

	version := strings.TrimSpace(res.Stdout)
	major, ok := manifest.MajorOf(version)
	if !res.OK() || version == "" || !ok {
		return Result{
			Name:           NameDotNetSDK,
			Status:         StatusError,
			Message:        "Not found or version could not be determined",
			Recommendation: fmt.Sprintf("Install .NET %d or later from https://dot.net", minimumSDKMajor),
		}
	}
	state.sdkVersion = version

	var details map[string]string
	if state.verbose {
		details = r.sdkDetails(state, version)
	}

	if major < minimumSDKMajor {
		return Result{
			Name:           NameDotNetSDK,
			Status:         StatusWarning,
			Message:        fmt.Sprintf("Version %s detected. .NET %d or later recommended.", version, minimumSDKMajor),
			Recommendation: "Install .NET 8 or .NET 9 SDK from https://dot.net",
			Details:        details,
		}
	}

	message := "Version " + version
	if runtime, ok := details["RuntimeVersion"]; ok {
		message = fmt.Sprintf("Version %s (Runtime: %s)", version, runtime)
	}
	return Result{
		Name:    NameDotNetSDK,
		Status:  StatusOK,
		Message: message,
		Details: details,
	}
}

func (r *Reconciler) sdkDetails(state *run, version string) map[string]string {
	details := map[string]string{"Version": version}

	if info, err := r.runProbe(state, "dotnet", "--info"); err == nil && info.OK() && strings.TrimSpace(info.Stdout) != "" {
		for key, value := range ParseDotNetInfo(info.Stdout) {
			details[key] = value
		}
	}

	if list, err := r.runProbe(state, "dotnet", "--list-sdks"); err == nil && list.OK() {
		details["InstalledSDKs"] = strconv.Itoa(countLines(list.Stdout))
	}

	if sdks := state.manifest.DotNetSDKs(); len(sdks) > 0 && sdks[0].Version != "" {
		details["ManifestSDK"] = sdks[0].Version
	}
	return details
}

var (
	infoVersion  = regexp.MustCompile(`(?i)Version:\s*(.+)`)
	infoCommit   = regexp.MustCompile(`(?i)Commit:\s*(.+)`)
	infoRID      = regexp.MustCompile(`(?i)RID:\s*(.+)`)
	infoBasePath = regexp.MustCompile(`(?i)Base Path:\s*(.+)`)
)

// ParseDotNetInfo extracts RuntimeVersion (first "Version:" line), Commit,
// RID and BasePath from `dotnet --info` output.
func ParseDotNetInfo(output string) map[string]string {
	info := make(map[string]string)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "version:"):
			if _, seen := info["RuntimeVersion"]; !seen {
				if m := infoVersion.FindStringSubmatch(line); m != nil {
					info["RuntimeVersion"] = strings.TrimSpace(m[1])
				}
			}
		case strings.Contains(lower, "commit:"):
			if m := infoCommit.FindStringSubmatch(line); m != nil {
				info["Commit"] = strings.TrimSpace(m[1])
			}
		case strings.Contains(lower, "rid:"):
			if m := infoRID.FindStringSubmatch(line); m != nil {
				info["RID"] = strings.TrimSpace(m[1])
			}
		case strings.Contains(lower, "base path:"):
			if m := infoBasePath.FindStringSubmatch(line); m != nil {
				info["BasePath"] = strings.TrimSpace(m[1])
			}
		}
	}
	return info
}

func countLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
