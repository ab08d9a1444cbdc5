package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed manifest.schema.json
var schemaDocument []byte

// ErrNoCheckSection is returned for documents without a "check" object
var ErrNoCheckSection = errors.New("manifest has no check section")

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("manifest.schema.json", bytes.NewReader(schemaDocument)); err != nil {
			schemaErr = fmt.Errorf("failed to add manifest schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile("manifest.schema.json")
	})
	return schema, schemaErr
}

// Parse decodes a manifest document loosely: field names match
// case-insensitively, trailing commas are tolerated and unknown keys are
// ignored. The document must carry a structurally valid "check" object.
func Parse(data []byte) (*Manifest, error) {
	cleaned := StripTrailingCommas(data)

	var generic interface{}
	if err := json.Unmarshal(cleaned, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(lowerKeys(generic)); err != nil {
		return nil, fmt.Errorf("manifest failed validation: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(cleaned, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.Check == nil {
		return nil, ErrNoCheckSection
	}
	return &m, nil
}

// StripTrailingCommas removes commas that directly precede a closing
// bracket or brace, ignoring anything inside string literals.
func StripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(data) && isJSONSpace(data[j]) {
				j++
			}
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// lowerKeys copies a decoded JSON value with every object key lowercased,
// matching how encoding/json resolves field names.
func lowerKeys(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for key, value := range x {
			out[strings.ToLower(key)] = lowerKeys(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, value := range x {
			out[i] = lowerKeys(value)
		}
		return out
	default:
		return v
	}
}
