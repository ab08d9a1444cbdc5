package check

import (
	"fmt"
	"strings"

	"mauicli/internal/host"
	"mauicli/internal/workload"
)

// platformWorkload is a per-platform workload requirement. Aliases are in
// priority order: the current short id first, the legacy maui- id second.
type platformWorkload struct {
	key     string
	display string
	aliases []string
}

var platformWorkloads = []platformWorkload{
	{key: FilterAndroid, display: "Android", aliases: []string{"android", "maui-android"}},
	{key: FilterIOS, display: "iOS", aliases: []string{"ios", "maui-ios"}},
	{key: FilterMacCatalyst, display: "Mac Catalyst", aliases: []string{"maccatalyst", "maui-maccatalyst"}},
	{key: FilterWindows, display: "Windows", aliases: []string{"maui-windows", "windows"}},
}

// appliesTo reports whether the workload is required on this host for the filter
func (pw platformWorkload) appliesTo(p host.Platform, filter string) bool {
	if filter != "" && filter != pw.key {
		return false
	}
	switch pw.key {
	case FilterAndroid:
		return true
	case FilterIOS, FilterMacCatalyst:
		return p == host.MacOS
	case FilterWindows:
		return p == host.Windows
	default:
		return false
	}
}

func (r *Reconciler) checkWorkloads(state *run) []Result {
	listing, err := workload.Query(state.ctx, r.runner)
	if err != nil {
		res := Result{
			Name:           NameWorkloads,
			Status:         StatusError,
			Message:        "Could not query workloads",
			Recommendation: "Ensure .NET SDK is properly installed",
		}
		if state.verbose {
			res.Details = map[string]string{"Error": err.Error()}
		}
		return []Result{res}
	}

	installed := listing.Workloads
	var debug string
	if state.verbose {
		debug = listing.Summary()
	}

	var results []Result
	for _, pw := range platformWorkloads {
		if !pw.appliesTo(r.host.Platform, state.platform) {
			continue
		}
		results = append(results, checkPlatformWorkload(pw, installed, state.verbose, debug))
	}

	if !hasAnyMauiWorkload(installed) {
		results = append(results, Result{
			Name:           NameWorkloads,
			Status:         StatusError,
			Message:        "No MAUI workloads installed",
			Recommendation: "Run: dotnet workload install maui",
		})
	}
	return results
}

func checkPlatformWorkload(pw platformWorkload, installed workload.Set, verbose bool, debug string) Result {
	name := fmt.Sprintf("MAUI Workload (%s)", pw.display)

	for _, alias := range pw.aliases {
		w, ok := installed.Lookup(alias)
		if !ok {
			continue
		}

		message := fmt.Sprintf("Installed (version %s)", w.Version)
		if verbose && w.ManifestVersion != "" {
			message = fmt.Sprintf("Installed (version %s, manifest %s)", w.Version, w.ManifestVersion)
		}

		res := Result{Name: name, Status: StatusOK, Message: message}
		if verbose {
			res.Details = map[string]string{
				"WorkloadId":      alias,
				"Version":         w.Version,
				"ManifestVersion": orNA(w.ManifestVersion),
				"Description":     orNA(w.Description),
				"Debug":           debug,
			}
		}
		return res
	}

	res := Result{
		Name:           name,
		Status:         StatusError,
		Message:        "Not installed",
		Recommendation: "Run: dotnet workload install " + pw.aliases[0],
	}
	if verbose {
		res.Details = map[string]string{
			"ExpectedWorkloadIds": strings.Join(pw.aliases, " or "),
			"InstalledWorkloads":  strings.Join(installed.IDs(), ", "),
			"Debug":               debug,
		}
	}
	return res
}

// hasAnyMauiWorkload is true when "maui" or any "maui-" prefixed id is installed
func hasAnyMauiWorkload(installed workload.Set) bool {
	if _, ok := installed.Lookup("maui"); ok {
		return true
	}
	for key := range installed {
		if strings.HasPrefix(key, "maui-") {
			return true
		}
	}
	return false
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
