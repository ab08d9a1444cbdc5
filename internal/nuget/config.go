// Package nuget edits NuGet.config package sources and reads local package
// folders.
package nuget

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mauicli/internal/fsutil"
	"mauicli/internal/logging"
)

const (
	// ConfigFileName is the name written when a directory has no config yet
	ConfigFileName = "NuGet.config"
	// MauiPattern routes MAUI packages to a registered source
	MauiPattern = "Microsoft.Maui*"

	nugetOrgKey = "nuget.org"
	nugetOrgURL = "https://api.nuget.org/v3/index.json"

	configFilePermissions = 0o644
)

// Source is one packageSources entry
type Source struct {
	Key   string
	Value string
}

// FindConfig returns the NuGet.config in dir matching any casing, or the
// path a new one would be written to.
func FindConfig(dir string) string {
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(e.Name(), ConfigFileName) {
				return filepath.Join(dir, e.Name())
			}
		}
	}
	return filepath.Join(dir, ConfigFileName)
}

// Sources lists the package sources declared in the config at path
func Sources(path string) ([]Source, error) {
	root, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	var out []Source
	if ps := root.child("packageSources"); ps != nil {
		for _, add := range ps.children {
			if add.name == "add" {
				out = append(out, Source{Key: add.attr("key"), Value: add.attr("value")})
			}
		}
	}
	return out, nil
}

// Mappings returns the package patterns mapped to key
func Mappings(path, key string) ([]string, error) {
	root, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	var out []string
	if psm := root.child("packageSourceMapping"); psm != nil {
		if src := psm.childWith("packageSource", "key", key); src != nil {
			for _, p := range src.children {
				if p.name == "package" {
					out = append(out, p.attr("pattern"))
				}
			}
		}
	}
	return out, nil
}

// Editor registers package sources in a NuGet.config file
type Editor struct {
	logger *logging.Logger
}

// NewEditor creates an editor
func NewEditor(logger *logging.Logger) *Editor {
	return &Editor{logger: logger}
}

// AddSource adds key with value to packageSources, or updates its value when
// present, and maps each pattern to it. A missing file is created with
// nuget.org as the fallback source. When the file gains its first source
// mapping, every other source is mapped with "*" so restores of unrelated
// packages keep working.
func (e *Editor) AddSource(path, key, value string, patterns ...string) error {
	root, err := readConfig(path)
	created := false
	switch {
	case errors.Is(err, os.ErrNotExist):
		root = newDefaultConfig()
		created = true
	case err != nil:
		return err
	}

	sources := root.ensureChild("packageSources")
	if add := sources.childWith("add", "key", key); add != nil {
		add.setAttr("value", value)
	} else {
		sources.children = append(sources.children, &node{
			name:  "add",
			attrs: []xml.Attr{newAttr("key", key), newAttr("value", value)},
		})
	}

	if len(patterns) > 0 {
		mapping := root.child("packageSourceMapping")
		if mapping == nil {
			mapping = root.ensureChild("packageSourceMapping")
			for _, add := range sources.children {
				if k := add.attr("key"); add.name == "add" && k != "" && k != key {
					mapping.mapPattern(k, "*")
				}
			}
		}
		for _, p := range patterns {
			mapping.mapPattern(key, p)
		}
	}

	data, err := encodeConfig(root)
	if err != nil {
		return err
	}
	perm := os.FileMode(configFilePermissions)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fsutil.AtomicWriteFile(path, data, perm, e.logger); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	e.logger.Info("nuget.source.registered", "Package source registered", map[string]interface{}{
		"config":   path,
		"key":      key,
		"value":    value,
		"patterns": patterns,
		"created":  created,
	})
	return nil
}

// AddLocalSource registers a package folder under name in dir's NuGet.config
// and routes MAUI packages to it
func (e *Editor) AddLocalSource(dir, name, folder string) (string, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", folder, err)
	}
	path := FindConfig(dir)
	if err := e.AddSource(path, name, abs, MauiPattern); err != nil {
		return "", err
	}
	return path, nil
}

// node is a minimal element tree; whitespace is regenerated on write
type node struct {
	name     string
	attrs    []xml.Attr
	children []*node
	text     string
	comment  bool
}

func newAttr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func (n *node) attr(name string) string {
	for _, a := range n.attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

func (n *node) setAttr(name, value string) {
	for i, a := range n.attrs {
		if strings.EqualFold(a.Name.Local, name) {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, newAttr(name, value))
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if !c.comment && c.name == name {
			return c
		}
	}
	return nil
}

func (n *node) childWith(name, attrName, value string) *node {
	for _, c := range n.children {
		if !c.comment && c.name == name && strings.EqualFold(c.attr(attrName), value) {
			return c
		}
	}
	return nil
}

func (n *node) ensureChild(name string) *node {
	if c := n.child(name); c != nil {
		return c
	}
	c := &node{name: name}
	n.children = append(n.children, c)
	return c
}

func (n *node) mapPattern(key, pattern string) {
	src := n.childWith("packageSource", "key", key)
	if src == nil {
		src = &node{name: "packageSource", attrs: []xml.Attr{newAttr("key", key)}}
		n.children = append(n.children, src)
	}
	if src.childWith("package", "pattern", pattern) == nil {
		src.children = append(src.children, &node{
			name:  "package",
			attrs: []xml.Attr{newAttr("pattern", pattern)},
		})
	}
}

func newDefaultConfig() *node {
	root := &node{name: "configuration"}
	sources := root.ensureChild("packageSources")
	sources.children = append(sources.children, &node{
		name:  "add",
		attrs: []xml.Attr{newAttr("key", nugetOrgKey), newAttr("value", nugetOrgURL)},
	})
	return root
}

func readConfig(path string) (*node, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path derived from the project directory
	if err != nil {
		return nil, err
	}
	root, err := decodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return root, nil
}

func decodeConfig(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*node
	var root *node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					a.Name = xml.Name{Local: "xmlns:" + a.Name.Local}
				} else {
					a.Name.Space = ""
				}
				n.attrs = append(n.attrs, a)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				if s := strings.TrimSpace(string(t)); s != "" {
					stack[len(stack)-1].text += s
				}
			}
		case xml.Comment:
			c := &node{text: string(t), comment: true}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, c)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no root element")
	}
	if root.name != "configuration" {
		return nil, fmt.Errorf("unexpected root element <%s>", root.name)
	}
	return root, nil
}

func encodeConfig(root *node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := encodeNode(enc, root); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeNode(enc *xml.Encoder, n *node) error {
	if n.comment {
		return enc.EncodeToken(xml.Comment(n.text))
	}

	start := xml.StartElement{Name: xml.Name{Local: n.name}, Attr: n.attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.text != "" {
		if err := enc.EncodeToken(xml.CharData(n.text)); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
