package workload

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const androidDeps = `{
  "microsoft.net.sdk.android": {
    "workload": {"alias": ["android"], "version": "35.0.7"},
    "jdk": {"version": "[17.0,22.0)", "recommendedVersion": "17.0.14"},
    "androidsdk": {
      "packages": [
        {"desc": "Android SDK Build-Tools 35", "sdkPackage": {"id": "build-tools;35.0.0", "recommendedVersion": "35.0.0"}},
        {"desc": "Android Emulator", "sdkPackage": {"id": "emulator", "recommendedVersion": "35.2.10"}, "optional": "true"},
        {"desc": "System image", "sdkPackage": {"id": {"win-x64": "system-images;android-35;google_apis;x86_64", "mac-arm64": "system-images;android-35;google_apis;arm64-v8a"}}, "optional": true},
        {"desc": "no package"}
      ]
    }
  }
}`

const iosDeps = `{
  "microsoft.net.sdk.ios": {
    "workload": {"alias": ["ios"], "version": "18.0.9010"},
    "xcode": {"version": "[16.0,)", "recommendedVersion": "16.0"},
    "sdk": {"version": "18.0"}
  }
}`

func writeDeps(t *testing.T, root, band, workloadID, version, content string) {
	t.Helper()
	dir := filepath.Join(root, "sdk-manifests", band, workloadID, version)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, dependenciesFile), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFeatureBands(t *testing.T) {
	tests := []struct {
		version string
		want    []string
	}{
		{"9.0.101", []string{"9.0.101", "9.0.100", "9.0.100-rc.2", "9.0.100-rc.1", "9.0.100-preview.7"}},
		{"10.0.100-rc.2.25502.107", []string{"10.0.100", "10.0.100", "10.0.100-rc.2", "10.0.100-rc.1", "10.0.100-preview.7"}},
		{"9.0", nil},
		{"", nil},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, FeatureBands(tt.version)); diff != "" {
			t.Errorf("FeatureBands(%q) mismatch (-want +got):\n%s", tt.version, diff)
		}
	}
}

func TestResolve_Android(t *testing.T) {
	root := t.TempDir()
	writeDeps(t, root, "9.0.100", AndroidManifestID, "35.0.7", androidDeps)

	resolver := NewDependencyResolver(root, "mac-arm64", nil)
	dep, err := resolver.Resolve(AndroidManifestID, "9.0.102")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if dep.Alias != "android" || dep.Version != "35.0.7" {
		t.Errorf("workload info = %s/%s", dep.Alias, dep.Version)
	}
	if dep.JDKRecommended != "17.0.14" || dep.JDKVersion != "[17.0,22.0)" {
		t.Errorf("jdk = %s/%s", dep.JDKVersion, dep.JDKRecommended)
	}

	want := []AndroidSDKPackage{
		{ID: "build-tools;35.0.0", Description: "Android SDK Build-Tools 35", RecommendedVersion: "35.0.0"},
		{ID: "emulator", Description: "Android Emulator", RecommendedVersion: "35.2.10", Optional: true},
		{ID: "system-images;android-35;google_apis;arm64-v8a", Description: "System image", Optional: true},
	}
	if diff := cmp.Diff(want, dep.AndroidPackages); diff != "" {
		t.Errorf("packages mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_PerHostIDMissingForRID(t *testing.T) {
	root := t.TempDir()
	writeDeps(t, root, "9.0.100", AndroidManifestID, "35.0.7", androidDeps)

	dep, err := NewDependencyResolver(root, "linux-x64", nil).Resolve(AndroidManifestID, "9.0.100")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(dep.AndroidPackages) != 2 {
		t.Errorf("expected per-host package to be skipped, got %+v", dep.AndroidPackages)
	}
}

func TestResolve_NewestVersionDirectory(t *testing.T) {
	root := t.TempDir()
	writeDeps(t, root, "9.0.100", IOSManifestID, "18.0.9010", iosDeps)
	writeDeps(t, root, "9.0.100", IOSManifestID, "9.0.0", `{"microsoft.net.sdk.ios": {"xcode": {"recommendedVersion": "15.0"}}}`)

	dep, err := NewDependencyResolver(root, "mac-arm64", nil).Resolve(IOSManifestID, "9.0.100")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if dep.XcodeRecommended != "16.0" {
		t.Errorf("XcodeRecommended = %s, want 16.0 from the newest directory", dep.XcodeRecommended)
	}
	if dep.SDKVersion != "18.0" {
		t.Errorf("SDKVersion = %s", dep.SDKVersion)
	}
}

func TestResolve_FallsBackToRCBand(t *testing.T) {
	root := t.TempDir()
	writeDeps(t, root, "10.0.100-rc.2", IOSManifestID, "26.0.10", iosDeps)

	if _, err := NewDependencyResolver(root, "mac-x64", nil).Resolve(IOSManifestID, "10.0.100-rc.2.25502.107"); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}
}

func TestResolve_NotFound(t *testing.T) {
	tests := []struct {
		name string
		root func(t *testing.T) string
	}{
		{"no sdk-manifests", func(t *testing.T) string { return t.TempDir() }},
		{"no band", func(t *testing.T) string {
			root := t.TempDir()
			writeDeps(t, root, "8.0.100", AndroidManifestID, "34.0.1", androidDeps)
			return root
		}},
		{"no dependencies file", func(t *testing.T) string {
			root := t.TempDir()
			if err := os.MkdirAll(filepath.Join(root, "sdk-manifests", "9.0.100", AndroidManifestID, "35.0.7"), 0o750); err != nil {
				t.Fatal(err)
			}
			return root
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDependencyResolver(tt.root(t), "linux-x64", nil).Resolve(AndroidManifestID, "9.0.100")
			if !errors.Is(err, ErrNoDependencies) {
				t.Errorf("Resolve() error = %v, want ErrNoDependencies", err)
			}
		})
	}
}

func TestResolveAll(t *testing.T) {
	root := t.TempDir()
	writeDeps(t, root, "9.0.100", AndroidManifestID, "35.0.7", androidDeps)
	writeDeps(t, root, "9.0.100", IOSManifestID, "18.0.9010", iosDeps)
	writeDeps(t, root, "9.0.100", MauiManifestID, "9.0.14", "{not json")

	deps := NewDependencyResolver(root, "win-x64", nil).ResolveAll("9.0.100")
	var names []string
	for _, d := range deps {
		names = append(names, d.Workload)
	}
	if diff := cmp.Diff([]string{AndroidManifestID, IOSManifestID}, names); diff != "" {
		t.Errorf("ResolveAll mismatch (-want +got):\n%s", diff)
	}
}

func TestSortVersionsDescending(t *testing.T) {
	semverOnly := []string{"9.0.0", "18.0.9010", "18.0.8303"}
	sortVersionsDescending(semverOnly)
	if diff := cmp.Diff([]string{"18.0.9010", "18.0.8303", "9.0.0"}, semverOnly); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
