//go:build windows

package host

import "golang.org/x/sys/windows"

// windowsVersion reads the real OS version. RtlGetVersion is not subject to
// the manifest-based version lie that GetVersionEx applies.
func windowsVersion() (OSVersion, bool) {
	v := windows.RtlGetVersion()
	if v == nil {
		return OSVersion{}, false
	}
	return OSVersion{
		Major: v.MajorVersion,
		Minor: v.MinorVersion,
		Build: v.BuildNumber,
	}, true
}
