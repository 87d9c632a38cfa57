package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	fconfig "github.com/msto63/devcmd/foundation/core/config"
	dcerror "github.com/msto63/devcmd/foundation/core/error"
	"github.com/msto63/devcmd/internal/model"
	"github.com/msto63/devcmd/internal/predicate"
	"github.com/msto63/devcmd/pkg/core/config"
)

// projectDir returns a temp project root with symlinks resolved so that
// paths compare equal to what the parser produces.
func projectDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func parseTOML(t *testing.T, dir, content string, opts ...Option) (*model.Configuration, error) {
	t.Helper()
	doc, err := fconfig.LoadFromString(content, fconfig.FormatTOML)
	if err != nil {
		t.Fatalf("LoadFromString() error = %v", err)
	}
	return Parse(&config.Source{
		Table:      doc.Root,
		ProjectDir: dir,
		Path:       filepath.Join(dir, "dev-cmd.toml"),
	}, opts...)
}

func mustParse(t *testing.T, dir, content string) *model.Configuration {
	t.Helper()
	cfg, err := parseTOML(t, dir, content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cfg
}

func TestParseSoleCommandIsDefault(t *testing.T) {
	dir := projectDir(t)
	cfg := mustParse(t, dir, `
[commands]
fmt = ["black", "."]
`)

	if len(cfg.Commands) != 1 {
		t.Fatalf("len(Commands) = %d, want 1", len(cfg.Commands))
	}
	fmtCmd := cfg.Commands[0]
	if diff := cmp.Diff([]string{"black", "."}, fmtCmd.Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
	if fmtCmd.Dir != dir {
		t.Errorf("Dir = %q, want project root %q", fmtCmd.Dir, dir)
	}
	if fmtCmd.AcceptsExtraArgs {
		t.Error("bare list command should not accept extra args")
	}
	if cfg.Default != model.Member(fmtCmd) {
		t.Errorf("Default = %v, want the sole command", cfg.Default)
	}
	if cfg.ExitStyle != nil || cfg.GracePeriod != nil || cfg.Env != nil {
		t.Errorf("unset options should stay nil: %v %v %v", cfg.ExitStyle, cfg.GracePeriod, cfg.Env)
	}
}

func TestParseFullCommandTable(t *testing.T) {
	dir := projectDir(t)
	if err := os.Mkdir(filepath.Join(dir, "docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := mustParse(t, dir, `
[commands.test]
args = ["pytest"]
cwd = "docs"
accepts-extra-args = true
description = "Run the tests"
hidden = true
when = "os != \"plan9\""

[commands.test.env]
ZED = "1"
ALPHA = "2"

[commands.lint]
args = ["ruff", "check"]
`)

	test := cfg.Commands[0]
	if test.Name != "test" {
		t.Fatalf("Commands[0] = %q, want declaration order", test.Name)
	}
	if test.Dir != filepath.Join(dir, "docs") {
		t.Errorf("Dir = %q", test.Dir)
	}
	if !test.AcceptsExtraArgs || !test.Hidden || test.Description != "Run the tests" {
		t.Errorf("flags not parsed: %+v", test)
	}
	if test.When == nil || test.When.String() != `os != "plan9"` {
		t.Errorf("When = %v", test.When)
	}
	wantEnv := []model.EnvVar{{Name: "ZED", Value: "1"}, {Name: "ALPHA", Value: "2"}}
	if diff := cmp.Diff(wantEnv, test.ExtraEnv); diff != "" {
		t.Errorf("ExtraEnv mismatch (-want +got):\n%s", diff)
	}
	if cfg.Default != nil {
		t.Errorf("Default = %v, want nil with two commands", cfg.Default)
	}
}

func TestParseTasks(t *testing.T) {
	dir := projectDir(t)
	cfg := mustParse(t, dir, `
default = "ci"
exit-style = "end"
grace-period = 2

[commands]
a = ["true"]
b = ["true"]
c = ["true"]
d = ["true"]

[tasks]
checks = ["a", ["b", "c"]]

[tasks.ci]
steps = ["checks", "d", "checks"]
description = "Everything"
`)

	if len(cfg.Tasks) != 2 {
		t.Fatalf("len(Tasks) = %d, want 2", len(cfg.Tasks))
	}
	checks, ci := cfg.Tasks[0], cfg.Tasks[1]

	if got := checks.Steps.Len(); got != 2 {
		t.Fatalf("checks has %d steps, want 2", got)
	}
	batch, ok := checks.Steps.Members[1].(model.Group)
	if !ok || batch.Len() != 2 {
		t.Fatalf("checks[1] = %#v, want a nested group of two", checks.Steps.Members[1])
	}
	if ci.Steps.Members[0] != model.Member(checks) || ci.Steps.Members[2] != model.Member(checks) {
		t.Error("task references should share the same *Task")
	}
	if ci.Description != "Everything" {
		t.Errorf("Description = %q", ci.Description)
	}
	if cfg.Default != model.Member(ci) {
		t.Errorf("Default = %v, want ci", cfg.Default)
	}
	if cfg.ExitStyle == nil || *cfg.ExitStyle != model.End {
		t.Errorf("ExitStyle = %v, want end", cfg.ExitStyle)
	}
	if cfg.GracePeriod == nil || *cfg.GracePeriod != 2 {
		t.Errorf("GracePeriod = %v, want 2", cfg.GracePeriod)
	}
}

func TestParseEnvironment(t *testing.T) {
	dir := projectDir(t)
	cfg := mustParse(t, dir, `
[commands]
fmt = ["black", "."]

[environment]
bin-dir = ".venv/bin"
interpreter = "/usr/bin/python3"
`)

	want := &model.ExecEnv{BinDir: filepath.Join(dir, ".venv", "bin"), Interpreter: "/usr/bin/python3"}
	if diff := cmp.Diff(want, cfg.Env); diff != "" {
		t.Errorf("Env mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWhenUsesPredicateOptions(t *testing.T) {
	dir := projectDir(t)
	cfg, err := parseTOML(t, dir, `
[commands.winonly]
args = ["cmd.exe"]
when = "os == \"windows\""
`, WithPredicateOptions(predicate.WithPlatform(predicate.Platform{OS: "windows", Arch: "amd64"})))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ok, err := cfg.Commands[0].When.Eval(nil)
	if err != nil || !ok {
		t.Errorf("When.Eval() = %v, %v; want true", ok, err)
	}
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		wantPath string
		wantMsg  string
	}{
		{
			name:     "no commands",
			config:   `default = "x"`,
			wantPath: "commands",
			wantMsg:  "at least one command",
		},
		{
			name:     "empty commands table",
			config:   "[commands]\n",
			wantPath: "commands",
			wantMsg:  "at least one command",
		},
		{
			name:     "args not strings",
			config:   "[commands]\nfmt = [\"black\", 1]\n",
			wantPath: "commands.fmt[1]",
			wantMsg:  "expected a string, found integer",
		},
		{
			name:     "missing args",
			config:   "[commands.fmt]\ncwd = \".\"\n",
			wantPath: "commands.fmt.args",
			wantMsg:  "must define an args array",
		},
		{
			name:     "unknown command key",
			config:   "[commands.fmt]\nargs = [\"black\"]\nargz = [\"x\"]\n",
			wantPath: "commands.fmt.argz",
			wantMsg:  "unexpected configuration key(s): argz",
		},
		{
			name:     "cwd outside project",
			config:   "[commands.fmt]\nargs = [\"black\"]\ncwd = \"..\"\n",
			wantPath: "commands.fmt.cwd",
			wantMsg:  "outside the project",
		},
		{
			name:     "absolute cwd outside project",
			config:   "[commands.fmt]\nargs = [\"black\"]\ncwd = \"/\"\n",
			wantPath: "commands.fmt.cwd",
			wantMsg:  "outside the project",
		},
		{
			name:     "env value not string",
			config:   "[commands.fmt]\nargs = [\"black\"]\n[commands.fmt.env]\nN = 1\n",
			wantPath: "commands.fmt.env.N",
			wantMsg:  "must be strings",
		},
		{
			name:     "accepts-extra-args not bool",
			config:   "[commands.fmt]\nargs = [\"black\"]\naccepts-extra-args = \"yes\"\n",
			wantPath: "commands.fmt.accepts-extra-args",
			wantMsg:  "expected true or false",
		},
		{
			name:     "bad when",
			config:   "[commands.fmt]\nargs = [\"black\"]\nwhen = \"os ==\"\n",
			wantPath: "commands.fmt.when",
			wantMsg:  "invalid expression",
		},
		{
			name:     "task collides with command",
			config:   "[commands]\nfmt = [\"black\"]\n[tasks]\nfmt = [\"fmt\"]\n",
			wantPath: "tasks.fmt",
			wantMsg:  "collides with command",
		},
		{
			name:     "forward reference",
			config:   "[commands]\na = [\"true\"]\n[tasks]\nfirst = [\"a\", [\"a\", \"second\"]]\nsecond = [\"a\"]\n",
			wantPath: "tasks.first[1][1]",
			wantMsg:  "forward-references task \"second\"",
		},
		{
			name:     "self reference",
			config:   "[commands]\na = [\"true\"]\n[tasks]\nloop = [\"a\", \"loop\"]\n",
			wantPath: "tasks.loop[1]",
			wantMsg:  "forward-references task \"loop\"",
		},
		{
			name:     "unknown step name",
			config:   "[commands]\na = [\"true\"]\nb = [\"true\"]\n[tasks]\nt = [\"a\", \"zzz\"]\n",
			wantPath: "tasks.t[1]",
			wantMsg:  "\"zzz\" is not the name of a defined command or task\n\nAvailable tasks: <none>\nAvailable commands: a b",
		},
		{
			name:     "step wrong type",
			config:   "[commands]\na = [\"true\"]\n[tasks]\nt = [\"a\", 3]\n",
			wantPath: "tasks.t[1]",
			wantMsg:  "found integer",
		},
		{
			name:     "task table without steps",
			config:   "[commands]\na = [\"true\"]\n[tasks.t]\ndescription = \"x\"\n",
			wantPath: "tasks.t.steps",
			wantMsg:  "must define a steps array",
		},
		{
			name:     "unknown default",
			config:   "default = \"nope\"\n[commands]\na = [\"true\"]\n",
			wantPath: "default",
			wantMsg:  "\"nope\" is not the name",
		},
		{
			name:     "default not string",
			config:   "default = 1\n[commands]\na = [\"true\"]\n",
			wantPath: "default",
			wantMsg:  "expected a string",
		},
		{
			name:     "bad exit style",
			config:   "exit-style = \"sometimes\"\n[commands]\na = [\"true\"]\n",
			wantPath: "exit-style",
			wantMsg:  "valid choices are after-step, immediate, end",
		},
		{
			name:     "grace period not numeric",
			config:   "grace-period = \"5s\"\n[commands]\na = [\"true\"]\n",
			wantPath: "grace-period",
			wantMsg:  "expected a number",
		},
		{
			name:     "unknown environment key",
			config:   "[commands]\na = [\"true\"]\n[environment]\nvenv = \".venv\"\n",
			wantPath: "environment.venv",
			wantMsg:  "unexpected configuration key(s)",
		},
		{
			name:     "leftover top-level key",
			config:   "defualt = \"a\"\n[commands]\na = [\"true\"]\n",
			wantPath: "defualt",
			wantMsg:  "unexpected configuration key(s): defualt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTOML(t, projectDir(t), tt.config)
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("Parse() error = %v, want *SchemaError", err)
			}
			if schemaErr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", schemaErr.Path, tt.wantPath)
			}
			if !strings.Contains(schemaErr.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", schemaErr.Message, tt.wantMsg)
			}
			if dcerror.GetCode(err) != dcerror.CodeInvalidConfig {
				t.Errorf("GetCode() = %v, want INVALID_CONFIG", dcerror.GetCode(err))
			}
		})
	}
}

func TestParseKeyPrefix(t *testing.T) {
	dir := projectDir(t)
	doc, err := fconfig.LoadFromString("[commands]\n\"a.b\" = [1]\n", fconfig.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Parse(&config.Source{Table: doc.Root, ProjectDir: dir, KeyPrefix: "tool.dev-cmd"})

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Parse() error = %v, want *SchemaError", err)
	}
	if want := `tool.dev-cmd.commands."a.b"[0]`; schemaErr.Path != want {
		t.Errorf("Path = %q, want %q", schemaErr.Path, want)
	}
}

func TestParseDoesNotMutateSource(t *testing.T) {
	dir := projectDir(t)
	doc, err := fconfig.LoadFromString("[commands]\na = [\"true\"]\n", fconfig.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	src := &config.Source{Table: doc.Root, ProjectDir: dir}
	if _, err := Parse(src); err != nil {
		t.Fatal(err)
	}
	if !src.Table.Has("commands") {
		t.Error("Parse() removed keys from the source table")
	}
}
