//go:build !windows

package host

// windowsVersion is unavailable on non-Windows hosts.
func windowsVersion() (OSVersion, bool) {
	return OSVersion{}, false
}
