package workload

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// UnknownVersion is reported when the listing carries no version column
const UnknownVersion = "unknown"

// Installed is one installed workload, normalized across listing formats
type Installed struct {
	ID              string `json:"id"`
	Version         string `json:"version"`
	ManifestVersion string `json:"manifestVersion,omitempty"`
	Description     string `json:"description,omitempty"`
}

// Set maps case-folded workload identifiers to their installed record
type Set map[string]Installed

func (s Set) add(w Installed) {
	s[strings.ToLower(w.ID)] = w
}

// Lookup finds a workload by identifier, ignoring case
func (s Set) Lookup(id string) (Installed, bool) {
	w, ok := s[strings.ToLower(id)]
	return w, ok
}

// IDs returns the original identifiers, sorted
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, w := range s {
		ids = append(ids, w.ID)
	}
	sort.Strings(ids)
	return ids
}

// ParseJSON reads `dotnet workload list --format json` output. It accepts an
// object with an "installed" array or a bare array. Malformed input yields an
// empty set.
func ParseJSON(raw string) Set {
	set, _ := decodeJSON(raw)
	return set
}

// decodeJSON also reports whether raw was a well-formed listing, so an empty
// set can be told apart from unusable output.
func decodeJSON(raw string) (Set, bool) {
	set := make(Set)

	var doc interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &doc); err != nil {
		return set, false
	}

	var entries []interface{}
	switch root := doc.(type) {
	case map[string]interface{}:
		arr, ok := root["installed"].([]interface{})
		if !ok {
			return set, false
		}
		entries = arr
	case []interface{}:
		entries = root
	default:
		return set, false
	}

	for _, entry := range entries {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		id := stringField(obj, "id")
		if id == "" {
			continue
		}
		version := stringField(obj, "version")
		if version == "" {
			version = UnknownVersion
		}
		set.add(Installed{
			ID:              id,
			Version:         version,
			ManifestVersion: stringField(obj, "manifestVersion"),
			Description:     stringField(obj, "description"),
		})
	}
	return set, true
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

var columnSplit = regexp.MustCompile(`\s{2,}`)

// ParseText reads the column-aligned table printed by `dotnet workload list`.
// Header and separator lines open the data section; footer hints are skipped.
func ParseText(raw string) Set {
	set := make(Set)
	inData := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isHeaderLine(line) {
			inData = true
			continue
		}
		if isFooterLine(line) || !inData {
			continue
		}

		var parts []string
		for _, p := range columnSplit.Split(line, -1) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}

		id := parts[0]
		lowerID := strings.ToLower(id)
		if strings.HasPrefix(lowerID, "use ") || strings.Contains(lowerID, "update") || strings.Contains(lowerID, "available") {
			continue
		}

		w := Installed{ID: id, Version: UnknownVersion}
		if len(parts) > 1 {
			w.Version = parts[1]
		}
		if len(parts) > 2 {
			w.ManifestVersion = parts[2]
		}
		set.add(w)
	}
	return set
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "installed workload") ||
		strings.Contains(line, "---") ||
		strings.Contains(lower, "workload id") ||
		strings.Contains(lower, "manifest version") {
		return true
	}
	return strings.Trim(line, "- ") == ""
}

func isFooterLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "use `dotnet workload search`") ||
		strings.Contains(lower, "available workloads") ||
		strings.Contains(lower, "no workloads installed")
}
