package model

import (
	"testing"
)

func TestExitStyleRoundTrip(t *testing.T) {
	tests := []struct {
		literal string
		want    ExitStyle
	}{
		{"after-step", AfterStep},
		{"immediate", Immediate},
		{"end", End},
	}
	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			got, err := ParseExitStyle(tt.literal)
			if err != nil {
				t.Fatalf("ParseExitStyle(%q) error = %v", tt.literal, err)
			}
			if got != tt.want {
				t.Errorf("ParseExitStyle(%q) = %v, want %v", tt.literal, got, tt.want)
			}
			if got.String() != tt.literal {
				t.Errorf("String() = %q, want %q", got.String(), tt.literal)
			}
		})
	}

	if _, err := ParseExitStyle("AFTER_STEP"); err == nil {
		t.Error("ParseExitStyle(AFTER_STEP) error = nil, want error")
	}
}

func TestExitStyleChoices(t *testing.T) {
	if got, want := ExitStyleChoices(), "after-step, immediate, end"; got != want {
		t.Errorf("ExitStyleChoices() = %q, want %q", got, want)
	}
}

func TestConfigurationLookup(t *testing.T) {
	fmtCmd := &Command{Name: "fmt", Args: []string{"black", "."}}
	lint := &Command{Name: "lint", Args: []string{"ruff", "check"}}
	checks := &Task{Name: "checks", Steps: Group{Members: []Member{fmtCmd, lint}}}
	cfg := &Configuration{Commands: []*Command{fmtCmd, lint}, Tasks: []*Task{checks}}

	if m, ok := cfg.Lookup("checks"); !ok || m != Member(checks) {
		t.Errorf("Lookup(checks) = %v, %v", m, ok)
	}
	if m, ok := cfg.Lookup("fmt"); !ok || m != Member(fmtCmd) {
		t.Errorf("Lookup(fmt) = %v, %v", m, ok)
	}
	if _, ok := cfg.Lookup("nope"); ok {
		t.Error("Lookup(nope) found something")
	}
	if got := NameOf(Group{}); got != "" {
		t.Errorf("NameOf(Group) = %q, want empty", got)
	}
	if got := fmtCmd.String(); got != "black ." {
		t.Errorf("String() = %q", got)
	}
}
