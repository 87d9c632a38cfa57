// File: config.go
// Title: Raw Configuration Loading
// Description: Loads TOML and YAML configuration files into ordered raw
//              documents. Declaration order of keys is preserved so that
//              callers can build ordered structures from the raw tables.
// Author: Mike Stoffels
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-15
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2026-10-15 v0.2.0: Ordered documents, dropped typed getters and watching

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	dcerror "github.com/msto63/devcmd/foundation/core/error"
)

// Format represents the configuration file format
type Format int

const (
	// FormatAuto auto-detects format from file extension
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Document is a parsed configuration file
type Document struct {
	Root     *Map
	FilePath string
	Format   Format
}

// LoadOptions defines options for loading configuration
type LoadOptions struct {
	Format Format
}

// Load loads a configuration file, detecting its format from the extension
func Load(filePath string) (*Document, error) {
	return LoadWithOptions(filePath, LoadOptions{Format: FormatAuto})
}

// LoadWithOptions loads a configuration file with custom options
func LoadWithOptions(filePath string, options LoadOptions) (*Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, dcerror.New("config file path cannot be empty").
			WithCode(dcerror.CodeInvalidInput).
			WithOperation("config.LoadWithOptions")
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		code := dcerror.CodeConfigError
		if os.IsNotExist(err) {
			code = dcerror.CodeNotFound
		}
		return nil, dcerror.Wrap(err, "failed to read config file").
			WithCode(code).
			WithOperation("config.LoadWithOptions").
			WithDetail("filePath", filePath)
	}

	format := options.Format
	if format == FormatAuto {
		format = detectFormat(filePath)
	}

	root, err := parseContent(content, format)
	if err != nil {
		return nil, dcerror.Wrap(err, fmt.Sprintf("failed to parse %s", filePath)).
			WithCode(dcerror.CodeInvalidConfig).
			WithOperation("config.LoadWithOptions").
			WithDetail("filePath", filePath).
			WithDetail("format", format.String())
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}
	return &Document{Root: root, FilePath: abs, Format: format}, nil
}

// LoadFromString parses configuration content with the given format
func LoadFromString(content string, format Format) (*Document, error) {
	if format == FormatAuto {
		format = FormatTOML
	}
	root, err := parseContent([]byte(content), format)
	if err != nil {
		return nil, dcerror.Wrap(err, "failed to parse config from string").
			WithCode(dcerror.CodeInvalidConfig).
			WithOperation("config.LoadFromString").
			WithDetail("format", format.String())
	}
	return &Document{Root: root, Format: format}, nil
}

// detectFormat determines the configuration format from file extension
func detectFormat(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// parseContent parses configuration content based on format
func parseContent(content []byte, format Format) (*Map, error) {
	switch format {
	case FormatTOML:
		return decodeTOML(content)
	case FormatYAML:
		return decodeYAML(content)
	default:
		return nil, dcerror.Newf("unsupported format: %s", format).
			WithCode(dcerror.CodeInvalidInput).
			WithOperation("config.parseContent")
	}
}

const keySep = "\x00"

func decodeTOML(content []byte) (*Map, error) {
	var raw map[string]any
	md, err := toml.Decode(string(content), &raw)
	if err != nil {
		return nil, dcerror.Wrap(err, "TOML parse error").
			WithCode(dcerror.CodeInvalidInput).
			WithOperation("config.decodeTOML")
	}

	// MetaData.Keys lists every key in document order; group them by parent.
	order := make(map[string][]string)
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		full := strings.Join(key, keySep)
		if seen[full] {
			continue
		}
		seen[full] = true
		parent := strings.Join(key[:len(key)-1], keySep)
		order[parent] = append(order[parent], key[len(key)-1])
	}
	return tomlTable(raw, "", order), nil
}

func tomlTable(raw map[string]any, path string, order map[string][]string) *Map {
	m := NewMap()
	child := func(k string) string {
		if path == "" {
			return k
		}
		return path + keySep + k
	}
	for _, k := range order[path] {
		if v, ok := raw[k]; ok && !m.Has(k) {
			m.Set(k, tomlValue(v, child(k), order))
		}
	}

	// Tables nested in arrays have no usable position information.
	var rest []string
	for k := range raw {
		if !m.Has(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		m.Set(k, tomlValue(raw[k], child(k), order))
	}
	return m
}

func tomlValue(v any, path string, order map[string][]string) any {
	switch t := v.(type) {
	case map[string]any:
		return tomlTable(t, path, order)
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = tomlTable(e, "", nil)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = tomlValue(e, "", nil)
		}
		return out
	default:
		return v
	}
}

func decodeYAML(content []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, dcerror.Wrap(err, "YAML parse error").
			WithCode(dcerror.CodeInvalidInput).
			WithOperation("config.decodeYAML")
	}
	if doc.Kind == 0 {
		return NewMap(), nil
	}
	v, err := yamlValue(&doc)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return NewMap(), nil
	}
	root, ok := v.(*Map)
	if !ok {
		return nil, dcerror.Newf("top level of a YAML config must be a mapping, found %s", TypeName(v)).
			WithCode(dcerror.CodeInvalidInput).
			WithOperation("config.decodeYAML")
	}
	return root, nil
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(n.Content[i].Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, dcerror.Wrap(err, fmt.Sprintf("line %d", n.Line)).
				WithCode(dcerror.CodeInvalidInput).
				WithOperation("config.yamlValue")
		}
		switch t := v.(type) {
		case int:
			return int64(t), nil
		case uint64:
			return int64(t), nil
		}
		return v, nil
	default:
		return nil, dcerror.Newf("unsupported YAML node at line %d", n.Line).
			WithCode(dcerror.CodeInvalidInput).
			WithOperation("config.yamlValue")
	}
}
