package manifest

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Manifest is the versioned description of required toolchain versions.
// It is read-only once loaded; every accessor tolerates a nil receiver and
// absent sections.
type Manifest struct {
	Check *Check `json:"check"`
}

// Check is the body of the manifest's top-level "check" key
type Check struct {
	ToolVersion     string            `json:"toolVersion,omitempty"`
	Variables       Variables         `json:"variables,omitempty"`
	VariableMappers []json.RawMessage `json:"variableMappers,omitempty"`
	OpenJDK         *OpenJDK          `json:"openjdk,omitempty"`
	Xcode           *Xcode            `json:"xcode,omitempty"`
	Android         *Android          `json:"android,omitempty"`
	DotNet          *DotNet           `json:"dotnet,omitempty"`
	VSWin           *VisualStudio     `json:"vswin,omitempty"`
}

// OpenJDK requirement
type OpenJDK struct {
	Version        string            `json:"version,omitempty"`
	MinimumVersion string            `json:"minimumVersion,omitempty"`
	RequireExact   bool              `json:"requireExact,omitempty"`
	URLs           map[string]string `json:"urls,omitempty"`
}

// Xcode requirement. The exact pin is optional.
type Xcode struct {
	ExactVersion       string `json:"exactVersion,omitempty"`
	ExactVersionName   string `json:"exactVersionName,omitempty"`
	MinimumVersion     string `json:"minimumVersion,omitempty"`
	MinimumVersionName string `json:"minimumVersionName,omitempty"`
}

// Android requirement
type Android struct {
	Packages  []AndroidPackage  `json:"packages,omitempty"`
	Emulators []AndroidEmulator `json:"emulators,omitempty"`
}

// AndroidPackage is an SDK manager package path with optional per-arch alternatives
type AndroidPackage struct {
	Path         string           `json:"path"`
	Version      string           `json:"version,omitempty"`
	Arch         string           `json:"arch,omitempty"`
	Alternatives []AndroidPackage `json:"alternatives,omitempty"`
}

// AndroidEmulator describes a recommended emulator image
type AndroidEmulator struct {
	SdkID           string   `json:"sdkId,omitempty"`
	AlternateSdkIDs []string `json:"alternateSdkIds,omitempty"`
	Description     string   `json:"desc,omitempty"`
	APILevel        int      `json:"apiLevel,omitempty"`
	Tag             string   `json:"tag,omitempty"`
	Device          string   `json:"device,omitempty"`
}

// DotNet requirement
type DotNet struct {
	SDKs []DotNetSDK `json:"sdks,omitempty"`
}

// DotNetSDK is one SDK version constraint with its required workloads
type DotNetSDK struct {
	Version          string            `json:"version,omitempty"`
	RequireExact     bool              `json:"requireExact,omitempty"`
	URLs             map[string]string `json:"urls,omitempty"`
	PackageSources   []string          `json:"packageSources,omitempty"`
	WorkloadRollback string            `json:"workloadRollback,omitempty"`
	WorkloadIDs      []string          `json:"workloadIds,omitempty"`
}

// VisualStudio is the Windows toolchain requirement
type VisualStudio struct {
	MinimumVersion   string `json:"minimumVersion,omitempty"`
	ExactVersion     string `json:"exactVersion,omitempty"`
	ExactVersionName string `json:"exactVersionName,omitempty"`
}

// Variables maps names such as MIN_ANDROID_API to string values.
// Numbers and booleans in the document are accepted and stringified.
type Variables map[string]string

// UnmarshalJSON implements json.Unmarshaler
func (v *Variables) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Variables, len(raw))
	for key, value := range raw {
		switch x := value.(type) {
		case string:
			out[key] = x
		case float64:
			out[key] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(x)
		}
	}
	*v = out
	return nil
}

var emptyCheck = &Check{}

func (m *Manifest) check() *Check {
	if m == nil || m.Check == nil {
		return emptyCheck
	}
	return m.Check
}

// ToolVersion returns the manifest's tool version
func (m *Manifest) ToolVersion() string {
	return m.check().ToolVersion
}

// Variable looks up a variable by name, falling back to a case-insensitive match
func (m *Manifest) Variable(name string) (string, bool) {
	vars := m.check().Variables
	if v, ok := vars[name]; ok {
		return v, true
	}
	for key, v := range vars {
		if strings.EqualFold(key, name) {
			return v, true
		}
	}
	return "", false
}

// IntVariable returns the named variable as an integer, or fallback when
// absent or not an integer.
func (m *Manifest) IntVariable(name string, fallback int) int {
	raw, ok := m.Variable(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

// OpenJDK returns the JDK requirement, zero-valued when absent
func (m *Manifest) OpenJDK() OpenJDK {
	if jdk := m.check().OpenJDK; jdk != nil {
		return *jdk
	}
	return OpenJDK{}
}

// Xcode returns the Xcode requirement, zero-valued when absent
func (m *Manifest) Xcode() Xcode {
	if x := m.check().Xcode; x != nil {
		return *x
	}
	return Xcode{}
}

// AndroidPackages returns the required Android SDK packages
func (m *Manifest) AndroidPackages() []AndroidPackage {
	if a := m.check().Android; a != nil {
		return a.Packages
	}
	return nil
}

// AndroidEmulators returns the recommended emulator images
func (m *Manifest) AndroidEmulators() []AndroidEmulator {
	if a := m.check().Android; a != nil {
		return a.Emulators
	}
	return nil
}

// DotNetSDKs returns the .NET SDK constraints
func (m *Manifest) DotNetSDKs() []DotNetSDK {
	if d := m.check().DotNet; d != nil {
		return d.SDKs
	}
	return nil
}

// VisualStudio returns the Windows toolchain requirement, zero-valued when absent
func (m *Manifest) VisualStudio() VisualStudio {
	if vs := m.check().VSWin; vs != nil {
		return *vs
	}
	return VisualStudio{}
}

// MajorOf returns the leading integer of a dotted version string
func MajorOf(version string) (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}
