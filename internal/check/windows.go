package check

import (
	"fmt"

	"mauicli/internal/host"
)

// Windows 10 version 1809
const minimumWindowsBuild = 17763

func (r *Reconciler) checkWindowsSDK(state *run) Result {
	if r.host.Platform != host.Windows {
		return Result{
			Name:    NameWindowsSDK,
			Status:  StatusNotApplicable,
			Message: "Not applicable on this platform",
		}
	}

	v := r.host.OS
	var details map[string]string
	if vs := state.manifest.VisualStudio(); vs.MinimumVersion != "" {
		details = map[string]string{"VisualStudioMinimum": vs.MinimumVersion}
	}

	switch {
	case v.Major == 0:
		return Result{
			Name:           NameWindowsSDK,
			Status:         StatusError,
			Message:        "Could not determine Windows version",
			Recommendation: "Windows 10 version 1809 or Windows 11 required for .NET MAUI",
			Details:        details,
		}
	case v.Major >= 10 && v.Build >= minimumWindowsBuild:
		return Result{
			Name:    NameWindowsSDK,
			Status:  StatusOK,
			Message: fmt.Sprintf("Windows %d.0 Build %d", v.Major, v.Build),
			Details: details,
		}
	case v.Major >= 10:
		return Result{
			Name:           NameWindowsSDK,
			Status:         StatusWarning,
			Message:        fmt.Sprintf("Windows 10 Build %d detected", v.Build),
			Recommendation: "Windows 10 version 1809 (build 17763) or later recommended for .NET MAUI",
			Details:        details,
		}
	default:
		return Result{
			Name:           NameWindowsSDK,
			Status:         StatusError,
			Message:        fmt.Sprintf("Windows %d detected", v.Major),
			Recommendation: "Windows 10 version 1809 or Windows 11 required for .NET MAUI",
			Details:        details,
		}
	}
}
