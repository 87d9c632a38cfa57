// ============================================================================
// devcmd - Development task runner
// ============================================================================
//
// Package:     model
// Description: Immutable configuration model: commands, tasks and groups
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

// Package model holds the validated, immutable form of a devcmd
// configuration. Values are built once by the parser and shared read-only by
// every invocation; nothing in this package mutates after construction.
package model

import (
	"fmt"
	"strings"
)

// Predicate decides whether a command or task takes part in a run. It is
// evaluated against an environment snapshot and never inspected otherwise.
type Predicate interface {
	Eval(env map[string]string) (bool, error)
	String() string
}

// EnvVar is one name/value pair overlaid on the inherited environment.
type EnvVar struct {
	Name  string
	Value string
}

// Member is one element of a Group: a *Command, a *Task or a nested Group.
type Member interface {
	member()
}

// Command is a single named executable invocation.
type Command struct {
	Name             string
	Args             []string
	ExtraEnv         []EnvVar
	Dir              string
	AcceptsExtraArgs bool
	When             Predicate
	Hidden           bool
	Description      string
}

func (*Command) member() {}

// String renders the command line for display.
func (c *Command) String() string {
	return strings.Join(c.Args, " ")
}

// Group is an ordered sequence of members. Whether the members run one after
// another or concurrently depends on nesting depth, not on the Group itself.
type Group struct {
	Members []Member
}

func (Group) member() {}

// Len returns the number of members.
func (g Group) Len() int {
	return len(g.Members)
}

// Task is a named composition of steps. Tasks are shared by pointer between
// every group that references them.
type Task struct {
	Name        string
	Steps       Group
	When        Predicate
	Hidden      bool
	Description string
}

func (*Task) member() {}

// ExitStyle selects how a command failure affects the rest of an invocation.
type ExitStyle int

const (
	// AfterStep lets running siblings finish and starts nothing new.
	AfterStep ExitStyle = iota
	// Immediate terminates everything still running.
	Immediate
	// End runs everything and reports all failures at the end.
	End
)

// ExitStyles lists the styles in the order they are documented.
var ExitStyles = []ExitStyle{AfterStep, Immediate, End}

// String returns the configuration literal for the style
func (s ExitStyle) String() string {
	switch s {
	case AfterStep:
		return "after-step"
	case Immediate:
		return "immediate"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// ParseExitStyle parses a configuration literal.
func ParseExitStyle(s string) (ExitStyle, error) {
	for _, style := range ExitStyles {
		if style.String() == s {
			return style, nil
		}
	}
	return AfterStep, fmt.Errorf("unknown exit style %q, expected one of %s", s, ExitStyleChoices())
}

// ExitStyleChoices renders the valid literals for messages and help text.
func ExitStyleChoices() string {
	names := make([]string, len(ExitStyles))
	for i, s := range ExitStyles {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}

// ExecEnv describes the environment every command is launched in.
type ExecEnv struct {
	// BinDir is prepended to PATH.
	BinDir string
	// Interpreter replaces a leading "python" and is prepended to "*.py"
	// programs.
	Interpreter string
}

// Configuration is the complete validated model of one config file.
type Configuration struct {
	Commands  []*Command
	Tasks     []*Task
	Default   Member
	ExitStyle *ExitStyle
	// GracePeriod in seconds; nil means the built-in default.
	GracePeriod *float64
	Env         *ExecEnv
	Source      string
}

// Command returns the named command.
func (c *Configuration) Command(name string) (*Command, bool) {
	for _, cmd := range c.Commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return nil, false
}

// Task returns the named task.
func (c *Configuration) Task(name string) (*Task, bool) {
	for _, t := range c.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Lookup resolves a name against tasks first, then commands.
func (c *Configuration) Lookup(name string) (Member, bool) {
	if t, ok := c.Task(name); ok {
		return t, true
	}
	if cmd, ok := c.Command(name); ok {
		return cmd, true
	}
	return nil, false
}

// NameOf returns the name of a command or task member, or "" for a group.
func NameOf(m Member) string {
	switch v := m.(type) {
	case *Command:
		return v.Name
	case *Task:
		return v.Name
	default:
		return ""
	}
}
