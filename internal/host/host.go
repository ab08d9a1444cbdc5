package host

import (
	"fmt"
	"runtime"
)

// Platform is the operating system family the tool runs on
type Platform int

const (
	// Other is any host without platform-specific checks
	Other Platform = iota
	// Windows hosts run the Windows SDK and windows workload checks
	Windows
	// MacOS hosts run the Xcode, ios and maccatalyst checks
	MacOS
	// Linux hosts run the Android checks only
	Linux
)

// String returns the lowercase platform name
func (p Platform) String() string {
	switch p {
	case Windows:
		return "windows"
	case MacOS:
		return "macos"
	case Linux:
		return "linux"
	default:
		return "other"
	}
}

// FromGOOS maps a Go GOOS value onto a Platform
func FromGOOS(goos string) Platform {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Other
	}
}

// OSVersion holds the kernel version triple. Only populated on Windows.
type OSVersion struct {
	Major uint32 `json:"major"`
	Minor uint32 `json:"minor"`
	Build uint32 `json:"build"`
}

func (v OSVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// Info describes the host. Detected once at startup and passed to consumers.
type Info struct {
	Platform Platform  `json:"-"`
	Name     string    `json:"platform"`
	Arch     string    `json:"arch"`
	OS       OSVersion `json:"os_version"`
}

// Detect inspects the running process
func Detect() Info {
	p := FromGOOS(runtime.GOOS)
	info := Info{
		Platform: p,
		Name:     p.String(),
		Arch:     runtime.GOARCH,
	}
	if p == Windows {
		if v, ok := windowsVersion(); ok {
			info.OS = v
		}
	}
	return info
}

// New builds an Info for a given platform, mainly for tests
func New(p Platform, v OSVersion) Info {
	return Info{Platform: p, Name: p.String(), Arch: runtime.GOARCH, OS: v}
}

// RID returns the runtime identifier prefix used by workload dependency files
// (win-x64, mac-arm64, mac-x64, linux-x64).
func (i Info) RID() string {
	arch := "x64"
	if i.Arch == "arm64" {
		arch = "arm64"
	}
	switch i.Platform {
	case Windows:
		return "win-" + arch
	case MacOS:
		return "mac-" + arch
	default:
		return "linux-" + arch
	}
}
