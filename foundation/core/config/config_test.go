// File: config_test.go
// Title: Configuration Module Tests
// Description: Tests for TOML/YAML loading, key order preservation and
//              upward file discovery.
// Author: Mike Stoffels
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-15

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	dcerror "github.com/msto63/devcmd/foundation/core/error"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestLoadTOMLPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev-cmd.toml")
	writeFile(t, path, `
default = "ci"
grace-period = 2.5

[commands]
zeta = ["echo", "z"]
alpha = ["echo", "a"]

[commands.mid]
args = ["make", "mid"]
accepts-extra-args = true

[tasks]
ci = ["zeta", ["alpha", "mid"]]
`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Format != FormatTOML {
		t.Errorf("Format = %v, want toml", doc.Format)
	}
	if !filepath.IsAbs(doc.FilePath) {
		t.Errorf("FilePath = %q, want absolute", doc.FilePath)
	}

	if diff := cmp.Diff([]string{"default", "grace-period", "commands", "tasks"}, doc.Root.Keys()); diff != "" {
		t.Errorf("root keys mismatch (-want +got):\n%s", diff)
	}

	v, _ := doc.Root.Get("commands")
	commands := v.(*Map)
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, commands.Keys()); diff != "" {
		t.Errorf("command keys mismatch (-want +got):\n%s", diff)
	}

	grace, _ := doc.Root.Get("grace-period")
	if grace != 2.5 {
		t.Errorf("grace-period = %v (%T), want 2.5", grace, grace)
	}
	accepts, ok := doc.Root.Lookup("commands", "mid", "accepts-extra-args")
	if !ok || accepts != true {
		t.Errorf("accepts-extra-args = %v, %v", accepts, ok)
	}

	ci, _ := doc.Root.Lookup("tasks", "ci")
	want := []any{"zeta", []any{"alpha", "mid"}}
	if diff := cmp.Diff(want, ci); diff != "" {
		t.Errorf("tasks.ci mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev-cmd.yaml")
	writeFile(t, path, `
commands:
  test:
    args: [pytest]
    env:
      B: "2"
      A: "1"
  fmt: [black, .]
grace-period: 3
`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Format != FormatYAML {
		t.Errorf("Format = %v, want yaml", doc.Format)
	}

	env, ok := doc.Root.Lookup("commands", "test", "env")
	if !ok {
		t.Fatal("commands.test.env missing")
	}
	if diff := cmp.Diff([]string{"B", "A"}, env.(*Map).Keys()); diff != "" {
		t.Errorf("env keys mismatch (-want +got):\n%s", diff)
	}
	grace, _ := doc.Root.Get("grace-period")
	if grace != int64(3) {
		t.Errorf("grace-period = %v (%T), want int64 3", grace, grace)
	}
	fmtArgs, _ := doc.Root.Lookup("commands", "fmt")
	if diff := cmp.Diff([]any{"black", "."}, fmtArgs); diff != "" {
		t.Errorf("commands.fmt mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	badTOML := filepath.Join(dir, "bad.toml")
	writeFile(t, badTOML, "commands = [")
	scalarYAML := filepath.Join(dir, "scalar.yaml")
	writeFile(t, scalarYAML, "just a string\n")

	tests := []struct {
		name string
		path string
		code dcerror.Code
	}{
		{"empty path", "  ", dcerror.CodeInvalidInput},
		{"missing file", filepath.Join(dir, "missing.toml"), dcerror.CodeNotFound},
		{"bad toml", badTOML, dcerror.CodeInvalidConfig},
		{"non-mapping yaml", scalarYAML, dcerror.CodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if got := dcerror.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadFromStringEmptyYAML(t *testing.T) {
	doc, err := LoadFromString("", FormatYAML)
	if err != nil {
		t.Fatalf("LoadFromString() error = %v", err)
	}
	if doc.Root.Len() != 0 {
		t.Errorf("Root.Len() = %d, want 0", doc.Root.Len())
	}
}

func TestMapOperations(t *testing.T) {
	m := NewMap().Set("b", 1).Set("a", 2).Set("b", 3)
	if diff := cmp.Diff([]string{"b", "a"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if v, _ := m.Get("b"); v != 3 {
		t.Errorf("Get(b) = %v, want 3", v)
	}

	clone := m.Clone()
	clone.Delete("b")
	if !m.Has("b") {
		t.Error("Delete() on clone modified the original")
	}
	if diff := cmp.Diff([]string{"a"}, clone.Keys()); diff != "" {
		t.Errorf("clone Keys() mismatch (-want +got):\n%s", diff)
	}

	var nilMap *Map
	if nilMap.Len() != 0 || nilMap.Has("x") {
		t.Error("nil Map should behave as empty")
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, "null"},
		{NewMap(), "table"},
		{[]any{}, "array"},
		{"s", "string"},
		{int64(1), "integer"},
		{1.5, "float"},
		{true, "boolean"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.v); got != tt.want {
			t.Errorf("TypeName(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "pyproject.toml"), "[tool.dev-cmd.commands]\nx = [\"true\"]\n")
	writeFile(t, filepath.Join(root, "a", "pyproject.toml"), "[project]\nname = \"a\"\n")

	hasTable := func(path string) (bool, error) {
		doc, err := Load(path)
		if err != nil {
			return false, err
		}
		_, ok := doc.Root.Lookup("tool", "dev-cmd")
		return ok, nil
	}
	opts := DiscoveryOptions{
		Start: nested,
		Candidates: []Candidate{
			{Filename: "dev-cmd.toml"},
			{Filename: "pyproject.toml", Accept: hasTable},
		},
	}

	got, err := FindConfigFile(opts)
	if err != nil {
		t.Fatalf("FindConfigFile() error = %v", err)
	}
	if want := filepath.Join(root, "pyproject.toml"); got != want {
		t.Errorf("FindConfigFile() = %q, want %q", got, want)
	}

	writeFile(t, filepath.Join(nested, "dev-cmd.toml"), "")
	got, err = FindConfigFile(opts)
	if err != nil {
		t.Fatalf("FindConfigFile() error = %v", err)
	}
	if want := filepath.Join(nested, "dev-cmd.toml"); got != want {
		t.Errorf("FindConfigFile() = %q, want %q", got, want)
	}
}

func TestFindConfigFileNotFound(t *testing.T) {
	_, err := FindConfigFile(DiscoveryOptions{
		Start:      t.TempDir(),
		Candidates: []Candidate{{Filename: "surely-not-present-devcmd.toml"}},
	})
	if !dcerror.HasCode(err, dcerror.CodeNotFound) {
		t.Errorf("FindConfigFile() error = %v, want NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), "no configuration file found") {
		t.Errorf("error message = %q", err.Error())
	}
}
