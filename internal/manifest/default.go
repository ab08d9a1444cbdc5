package manifest

import (
	_ "embed"
)

// bundledManifest ships inside the binary and is the third load tier
//
//go:embed default-manifest.json
var bundledManifest []byte

// Bundled returns the raw embedded manifest document
func Bundled() []byte {
	return bundledManifest
}

// defaultManifest is the floor used when every other tier fails. Built once;
// callers must treat it as read-only.
var defaultManifest = &Manifest{
	Check: &Check{
		ToolVersion: "1.0.0",
		Variables: Variables{
			"DOTNET_SDK_VERSION": "8.0.0",
			"OPENJDK_VERSION":    "17.0",
			"MIN_ANDROID_API":    "21",
			"TARGET_ANDROID_API": "34",
		},
		OpenJDK: &OpenJDK{
			Version: "17.0",
		},
		Xcode: &Xcode{
			MinimumVersion:     "15",
			MinimumVersionName: "15.0",
		},
		Android: &Android{
			Packages: []AndroidPackage{
				{Path: "platforms;android-34", Version: "1"},
				{Path: "platforms;android-33", Version: "1"},
				{Path: "build-tools;34.0.0", Version: "34.0.0"},
				{Path: "platform-tools", Version: "34.0.0"},
			},
		},
		DotNet: &DotNet{
			SDKs: []DotNetSDK{{
				Version:     "8.0.0",
				WorkloadIDs: []string{"maui", "android", "ios", "maccatalyst", "macos"},
			}},
		},
		VSWin: &VisualStudio{
			MinimumVersion: "17.8",
		},
	},
}

// DefaultManifest returns the hardcoded fallback manifest
func DefaultManifest() *Manifest {
	return defaultManifest
}
