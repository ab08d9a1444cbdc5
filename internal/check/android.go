package check

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mauicli/internal/fsutil"
	"mauicli/internal/host"
	"mauicli/internal/manifest"
	"mauicli/internal/workload"
)

const (
	defaultJDKVersion       = "17.0"
	defaultJDKMajor         = 17
	minimumSupportedJDK     = 11
	defaultMinAndroidAPI    = 21
	defaultTargetAndroidAPI = 34

	androidDependenciesURL = "https://learn.microsoft.com/dotnet/android/getting-started/installation/dependencies"
)

var (
	javaVersionPattern     = regexp.MustCompile(`version\s+"?(\d+)(?:\.(\d+))?`)
	androidPlatformPattern = regexp.MustCompile(`(?:android|platform)-(\d+)`)
)

func (r *Reconciler) checkJavaJDK(state *run) Result {
	required := state.manifest.OpenJDK().Version
	if required == "" {
		required = defaultJDKVersion
	}
	requiredMajor, ok := manifest.MajorOf(required)
	if !ok {
		requiredMajor = defaultJDKMajor
	}

	javaHome := r.getenv("JAVA_HOME")
	if javaHome == "" || !fsutil.DirExists(javaHome) {
		rec := fmt.Sprintf("Install JDK %s or later and set JAVA_HOME environment variable", required)
		if r.host.Platform == host.MacOS {
			rec = fmt.Sprintf("Install JDK %s from %s or set JAVA_HOME", required, androidDependenciesURL)
		}
		return Result{
			Name:           NameJavaJDK,
			Status:         StatusError,
			Message:        "JAVA_HOME not set or directory not found",
			Recommendation: rec,
		}
	}

	javaExe := "java"
	if r.host.Platform == host.Windows {
		javaExe = "java.exe"
	}
	javaPath := filepath.Join(javaHome, "bin", javaExe)

	details := map[string]string{
		"JavaHome": javaHome,
		"JavaPath": javaPath,
	}
	if rec := r.recommended(state, workload.AndroidManifestID); rec != nil && rec.JDKRecommended != "" {
		details["RecommendedJdk"] = rec.JDKRecommended
	}

	if !fsutil.FileExists(javaPath) {
		return Result{
			Name:           NameJavaJDK,
			Status:         StatusWarning,
			Message:        fmt.Sprintf("JAVA_HOME is set but java executable not found at %s", javaPath),
			Recommendation: "Verify JAVA_HOME points to a valid JDK installation",
			Details:        details,
		}
	}

	res, err := r.runProbe(state, javaPath, "-version")
	if err != nil {
		return Result{
			Name:           NameJavaJDK,
			Status:         StatusError,
			Message:        "Could not verify Java installation",
			Recommendation: fmt.Sprintf("Error: %v", err),
			Details:        details,
		}
	}

	if res.OK() {
		// java -version prints to stderr
		major, found := ParseJavaMajor(res.Stderr)
		if !found {
			major, found = ParseJavaMajor(res.Stdout)
		}
		if found {
			details["Version"] = strconv.Itoa(major)
			rec := fmt.Sprintf("Install JDK %s or later from %s", required, androidDependenciesURL)
			switch {
			case major >= requiredMajor:
				return Result{
					Name:    NameJavaJDK,
					Status:  StatusOK,
					Message: fmt.Sprintf("Version %d (JAVA_HOME: %s)", major, javaHome),
					Details: details,
				}
			case major >= minimumSupportedJDK:
				return Result{
					Name:           NameJavaJDK,
					Status:         StatusWarning,
					Message:        fmt.Sprintf("Version %d detected. JDK %d+ recommended for best compatibility.", major, requiredMajor),
					Recommendation: rec,
					Details:        details,
				}
			default:
				return Result{
					Name:           NameJavaJDK,
					Status:         StatusError,
					Message:        fmt.Sprintf("Version %d detected. JDK %d+ required.", major, requiredMajor),
					Recommendation: rec,
					Details:        details,
				}
			}
		}
	}

	return Result{
		Name:    NameJavaJDK,
		Status:  StatusOK,
		Message: "Found at " + javaHome,
		Details: details,
	}
}

// ParseJavaMajor extracts the major version from `java -version` output.
// Legacy "1.8" style versions report the second component.
func ParseJavaMajor(output string) (int, bool) {
	m := javaVersionPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if major == 1 && m[2] != "" {
		if minor, err := strconv.Atoi(m[2]); err == nil {
			return minor, true
		}
	}
	return major, true
}

func (r *Reconciler) checkAndroidSDK(state *run) Result {
	root := r.androidRoot()
	if root == "" {
		return Result{
			Name:    NameAndroidSDK,
			Status:  StatusError,
			Message: "ANDROID_HOME or ANDROID_SDK_ROOT not set, or directory not found",
			Recommendation: "Install Android SDK through Android Studio or Visual Studio, then set ANDROID_HOME environment variable. See: " +
				androidDependenciesURL,
		}
	}

	minAPI := state.manifest.IntVariable("MIN_ANDROID_API", defaultMinAndroidAPI)
	targetAPI := state.manifest.IntVariable("TARGET_ANDROID_API", defaultTargetAndroidAPI)
	platforms := AndroidPlatforms(root)

	details := map[string]string{
		"AndroidHome": root,
		"Platforms":   joinInts(platforms),
		"MinApi":      strconv.Itoa(minAPI),
		"TargetApi":   strconv.Itoa(targetAPI),
	}
	if missing := missingPackages(root, state.manifest.AndroidPackages()); len(missing) > 0 {
		details["MissingPackages"] = strings.Join(missing, ", ")
	}

	var missing []string
	for _, component := range []string{"platform-tools", "build-tools", "platforms"} {
		if !fsutil.DirExists(filepath.Join(root, component)) {
			missing = append(missing, component)
		}
	}
	if len(missing) > 0 {
		return Result{
			Name:           NameAndroidSDK,
			Status:         StatusWarning,
			Message:        fmt.Sprintf("Found at %s, but missing components: %s", root, strings.Join(missing, ", ")),
			Recommendation: fmt.Sprintf("Use Android SDK Manager to install missing components (API %d+ required)", minAPI),
			Details:        details,
		}
	}

	hasMin, hasTarget := false, false
	for _, api := range platforms {
		if api >= minAPI {
			hasMin = true
		}
		if api >= targetAPI {
			hasTarget = true
		}
	}

	if !hasMin {
		return Result{
			Name:           NameAndroidSDK,
			Status:         StatusError,
			Message:        fmt.Sprintf("Found at %s, but no platforms API %d+ detected", root, minAPI),
			Recommendation: fmt.Sprintf("Install Android SDK Platform API %d or later using Android SDK Manager", minAPI),
			Details:        details,
		}
	}
	if !hasTarget && state.verbose {
		return Result{
			Name:           NameAndroidSDK,
			Status:         StatusWarning,
			Message:        fmt.Sprintf("Found at %s. Minimum API %d found, but target API %d recommended", root, minAPI, targetAPI),
			Recommendation: fmt.Sprintf("Install Android SDK Platform API %d for latest features and Google Play compatibility", targetAPI),
			Details:        details,
		}
	}

	return Result{
		Name:    NameAndroidSDK,
		Status:  StatusOK,
		Message: "Found at " + root,
		Details: details,
	}
}

// androidRoot resolves the SDK location. An empty ANDROID_HOME is treated as
// unset; per-OS defaults apply only when neither variable is set.
func (r *Reconciler) androidRoot() string {
	for _, key := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		if dir := r.getenv(key); dir != "" {
			if fsutil.DirExists(dir) {
				return dir
			}
			return ""
		}
	}

	var candidate string
	switch r.host.Platform {
	case host.MacOS:
		if home := r.getenv("HOME"); home != "" {
			candidate = filepath.Join(home, "Library", "Android", "sdk")
		}
	case host.Windows:
		if local := r.getenv("LOCALAPPDATA"); local != "" {
			candidate = filepath.Join(local, "Android", "Sdk")
		}
	case host.Linux:
		if home := r.getenv("HOME"); home != "" {
			candidate = filepath.Join(home, "Android", "Sdk")
		}
	case host.Other:
	}
	if candidate != "" && fsutil.DirExists(candidate) {
		return candidate
	}
	return ""
}

// AndroidPlatforms lists the installed platform API levels under root, ascending
func AndroidPlatforms(root string) []int {
	entries, err := os.ReadDir(filepath.Join(root, "platforms"))
	if err != nil {
		return nil
	}
	var apis []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := androidPlatformPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if api, err := strconv.Atoi(m[1]); err == nil {
			apis = append(apis, api)
		}
	}
	sort.Ints(apis)
	return apis
}

// missingPackages reports manifest package paths with no directory under root.
// An installed alternative satisfies its parent.
func missingPackages(root string, packages []manifest.AndroidPackage) []string {
	var missing []string
	for _, pkg := range packages {
		if pkg.Path == "" {
			continue
		}
		if packageInstalled(root, pkg.Path) {
			continue
		}
		found := false
		for _, alt := range pkg.Alternatives {
			if alt.Path != "" && packageInstalled(root, alt.Path) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, pkg.Path)
		}
	}
	return missing
}

func packageInstalled(root, sdkPath string) bool {
	parts := strings.Split(sdkPath, ";")
	return fsutil.DirExists(filepath.Join(append([]string{root}, parts...)...))
}

// recommended looks up workload-declared dependencies in verbose mode
func (r *Reconciler) recommended(state *run, workloadID string) *workload.Dependency {
	if r.deps == nil || !state.verbose || state.sdkVersion == "" {
		return nil
	}
	dep, err := r.deps.Resolve(workloadID, state.sdkVersion)
	if err != nil {
		r.logger.Debug("check.deps.unavailable", "Workload dependencies not found", map[string]interface{}{
			"workload": workloadID,
			"error":    err.Error(),
		})
		return nil
	}
	return dep
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
