package manifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_CaseInsensitiveAndTrailingCommas(t *testing.T) {
	doc := `{
  "CHECK": {
    "ToolVersion": "2.1.0",
    "Variables": { "MIN_ANDROID_API": "23", "TARGET_ANDROID_API": 35, },
    "OpenJdk": { "Version": "21.0", "RequireExact": true, },
    "XCODE": { "MinimumVersion": "16", "ExactVersionName": "16.2", },
    "android": { "packages": [ { "path": "platform-tools", "version": "35.0.2" }, ], },
    "unknownSection": { "ignored": [1, 2, 3,] },
  },
}`

	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if m.ToolVersion() != "2.1.0" {
		t.Errorf("ToolVersion() = %s", m.ToolVersion())
	}
	if got := m.IntVariable("MIN_ANDROID_API", 0); got != 23 {
		t.Errorf("MIN_ANDROID_API = %d, want 23", got)
	}
	if got := m.IntVariable("TARGET_ANDROID_API", 0); got != 35 {
		t.Errorf("TARGET_ANDROID_API = %d, want 35 (numeric value)", got)
	}
	if jdk := m.OpenJDK(); jdk.Version != "21.0" || !jdk.RequireExact {
		t.Errorf("OpenJDK() = %+v", jdk)
	}
	if x := m.Xcode(); x.MinimumVersion != "16" || x.ExactVersionName != "16.2" {
		t.Errorf("Xcode() = %+v", x)
	}
	if pkgs := m.AndroidPackages(); len(pkgs) != 1 || pkgs[0].Path != "platform-tools" {
		t.Errorf("AndroidPackages() = %+v", pkgs)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "<html>503</html>"},
		{"empty", ""},
		{"no check key", `{"other": {}}`},
		{"check is null", `{"check": null}`},
		{"check is array", `{"check": []}`},
		{"variables wrong type", `{"check": {"variables": ["a"]}}`},
		{"package without path", `{"check": {"android": {"packages": [{"version": "1"}]}}}`},
		{"emulator api level string", `{"check": {"android": {"emulators": [{"apiLevel": "35"}]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.doc)
			}
		})
	}
}

func TestParse_EmptyCheckIsValid(t *testing.T) {
	m, err := Parse([]byte(`{"check": {}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.IntVariable("MIN_ANDROID_API", 21) != 21 {
		t.Error("absent variable should use fallback")
	}
}

func TestStripTrailingCommas(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1,}`, `{"a": 1}`},
		{`[1, 2, ]`, `[1, 2 ]`},
		{"{\"a\": [1,\n\t]\n,}", "{\"a\": [1\n\t]\n}"},
		{`{"s": "keep,}"}`, `{"s": "keep,}"}`},
		{`{"s": "esc \" ,]",}`, `{"s": "esc \" ,]"}`},
		{`{"a": 1, "b": 2}`, `{"a": 1, "b": 2}`},
	}

	for _, tt := range tests {
		if got := string(StripTrailingCommas([]byte(tt.in))); got != tt.want {
			t.Errorf("StripTrailingCommas(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNilManifestAccessors(t *testing.T) {
	var m *Manifest

	if m.ToolVersion() != "" {
		t.Error("ToolVersion() on nil should be empty")
	}
	if _, ok := m.Variable("MIN_ANDROID_API"); ok {
		t.Error("Variable() on nil should be absent")
	}
	if m.IntVariable("TARGET_ANDROID_API", 34) != 34 {
		t.Error("IntVariable() on nil should return fallback")
	}
	if m.Xcode() != (Xcode{}) {
		t.Error("Xcode() on nil should be zero")
	}
	if m.AndroidPackages() != nil || m.DotNetSDKs() != nil || m.AndroidEmulators() != nil {
		t.Error("slice accessors on nil should be nil")
	}
}

func TestVariable_CaseInsensitiveFallback(t *testing.T) {
	m := &Manifest{Check: &Check{Variables: Variables{"min_android_api": "24"}}}
	if v, ok := m.Variable("MIN_ANDROID_API"); !ok || v != "24" {
		t.Errorf("Variable() = %q, %v", v, ok)
	}
	m.Check.Variables["BAD"] = "abc"
	if m.IntVariable("BAD", 7) != 7 {
		t.Error("non-integer variable should fall back")
	}
}

func TestDefaultManifest_SelfConsistent(t *testing.T) {
	m := DefaultManifest()

	minAPI := m.IntVariable("MIN_ANDROID_API", -1)
	targetAPI := m.IntVariable("TARGET_ANDROID_API", -1)
	if minAPI != 21 || targetAPI != 34 {
		t.Errorf("API levels = %d/%d, want 21/34", minAPI, targetAPI)
	}
	if minAPI > targetAPI {
		t.Error("minimum API must not exceed target API")
	}
	if m.ToolVersion() != "1.0.0" {
		t.Errorf("ToolVersion() = %s", m.ToolVersion())
	}
	if m.OpenJDK().Version != "17.0" {
		t.Errorf("OpenJDK().Version = %s", m.OpenJDK().Version)
	}
	if x := m.Xcode(); x.MinimumVersion != "15" || x.MinimumVersionName != "15.0" || x.ExactVersionName != "" {
		t.Errorf("Xcode() = %+v", x)
	}
	if m.VisualStudio().MinimumVersion != "17.8" {
		t.Errorf("VisualStudio().MinimumVersion = %s", m.VisualStudio().MinimumVersion)
	}

	wantWorkloads := []string{"maui", "android", "ios", "maccatalyst", "macos"}
	sdks := m.DotNetSDKs()
	if len(sdks) != 1 {
		t.Fatalf("DotNetSDKs() = %d entries, want 1", len(sdks))
	}
	if diff := cmp.Diff(wantWorkloads, sdks[0].WorkloadIDs); diff != "" {
		t.Errorf("workload ids mismatch (-want +got):\n%s", diff)
	}

	wantPackages := []string{"platforms;android-34", "platforms;android-33", "build-tools;34.0.0", "platform-tools"}
	var gotPackages []string
	for _, p := range m.AndroidPackages() {
		gotPackages = append(gotPackages, p.Path)
	}
	if diff := cmp.Diff(wantPackages, gotPackages); diff != "" {
		t.Errorf("android packages mismatch (-want +got):\n%s", diff)
	}

	if DefaultManifest() != m {
		t.Error("DefaultManifest() should return the single shared value")
	}
}

func TestBundledManifest_Parses(t *testing.T) {
	m, err := Parse(Bundled())
	if err != nil {
		t.Fatalf("bundled manifest invalid: %v", err)
	}
	minAPI := m.IntVariable("MIN_ANDROID_API", -1)
	targetAPI := m.IntVariable("TARGET_ANDROID_API", -1)
	if minAPI <= 0 || minAPI > targetAPI {
		t.Errorf("bundled API levels inconsistent: %d/%d", minAPI, targetAPI)
	}
	if len(m.AndroidEmulators()) == 0 {
		t.Error("expected emulator entries in bundled manifest")
	}
}

func TestMajorOf(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"17.0", 17, true},
		{"15", 15, true},
		{" 9.0.100 ", 9, true},
		{"", 0, false},
		{"v17", 0, false},
	}
	for _, tt := range tests {
		got, ok := MajorOf(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("MajorOf(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
