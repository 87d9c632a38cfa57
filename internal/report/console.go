// ============================================================================
// devcmd - Development task runner
// ============================================================================
//
// Package:     report
// Description: Lifecycle console output for invocations
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

// Package report renders lifecycle messages (what is executing, what is being
// terminated, the final summary) to the console. Rendering options are passed
// explicitly; nothing here touches process-wide color state.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/msto63/devcmd/pkg/core/version"
)

// ColorMode selects when output is colored.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ColorModes lists the modes in documentation order.
var ColorModes = []ColorMode{ColorAuto, ColorAlways, ColorNever}

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	for _, m := range ColorModes {
		if m.String() == s {
			return m, nil
		}
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q, expected auto, always or never", s)
}

// Enabled resolves the mode for w. Auto colors terminals unless NO_COLOR is
// set or TERM is "dumb".
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Options configures a Console.
type Options struct {
	// Out receives lifecycle messages; defaults to stderr.
	Out   io.Writer
	Color bool
	Quiet bool
}

// ANSI palette indexes
var (
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
	colorGray    = lipgloss.Color("8")
)

type styles struct {
	prefix      lipgloss.Style
	prefixBold  lipgloss.Style
	action      lipgloss.Style
	actionBold  lipgloss.Style
	failed      lipgloss.Style
	failedBold  lipgloss.Style
	muted       lipgloss.Style
	warning     lipgloss.Style
	success     lipgloss.Style
	successBold lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		prefix:      r.NewStyle().Foreground(colorCyan),
		prefixBold:  r.NewStyle().Foreground(colorCyan).Bold(true),
		action:      r.NewStyle().Foreground(colorMagenta),
		actionBold:  r.NewStyle().Foreground(colorMagenta).Bold(true),
		failed:      r.NewStyle().Foreground(colorRed),
		failedBold:  r.NewStyle().Foreground(colorRed).Bold(true),
		muted:       r.NewStyle().Foreground(colorGray),
		warning:     r.NewStyle().Foreground(colorYellow),
		success:     r.NewStyle().Foreground(colorGreen),
		successBold: r.NewStyle().Foreground(colorGreen).Bold(true),
	}
}

// Console writes lifecycle messages. It is safe for concurrent use; each
// message is written in one piece.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	quiet  bool
	color  bool
	styles styles
}

// NewConsole creates a Console.
func NewConsole(opts Options) *Console {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	r := lipgloss.NewRenderer(out)
	if opts.Color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Console{out: out, quiet: opts.Quiet, color: opts.Color, styles: newStyles(r)}
}

// Color reports whether output is colored.
func (c *Console) Color() bool {
	return c.color
}

// Quiet reports whether lifecycle messages are suppressed.
func (c *Console) Quiet() bool {
	return c.quiet
}

func (c *Console) write(s string, force bool) {
	if c.quiet && !force {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, s)
}

func (c *Console) line(s string) {
	c.write(s+"\n", false)
}

func (c *Console) stepPrefix(target string) string {
	return c.styles.prefix.Render(version.Name) + " " + c.styles.prefixBold.Render(target) + c.styles.prefix.Render("]")
}

// Executing announces a command run in the foreground.
func (c *Console) Executing(target, command string) {
	c.line(c.stepPrefix(target) + " " +
		c.styles.action.Render("Executing") + " " + c.styles.actionBold.Render(command) + c.styles.action.Render("..."))
}

// Concurrently announces a batch.
func (c *Console) Concurrently(target string, members []string) {
	c.line(c.stepPrefix(target) + " " +
		c.styles.action.Render("Concurrently executing") + " " +
		c.styles.actionBold.Render(strings.Join(members, " ")) +
		c.styles.action.Render("..."))
}

// Output prints the captured output of a batch member under a header naming
// it. The output itself is printed even when quiet.
func (c *Console) Output(target, command string, failed bool, output []byte) {
	name := c.styles.actionBold.Render(command)
	if failed {
		name = c.styles.failedBold.Render(command)
	}
	var b strings.Builder
	if !c.quiet {
		b.WriteString(c.stepPrefix(target) + " " + name + ":\n")
	}
	b.Write(output)
	c.write(b.String(), true)
}

// Terminating announces a termination request.
func (c *Console) Terminating(pid int, command string) {
	c.line(c.styles.muted.Render(fmt.Sprintf("Terminating in-flight process %d of %s...", pid, command)))
}

// Killing announces a forced kill after the grace period ran out.
func (c *Console) Killing(pid int, grace time.Duration) {
	c.line(c.styles.warning.Render(fmt.Sprintf(
		"Process %d has not responded to a termination request after %.2fs, killing...", pid, grace.Seconds())))
}

// Warn prints a warning.
func (c *Console) Warn(msg string) {
	c.line(c.styles.warning.Render(msg))
}

// ConfigError reports an invalid configuration or request.
func (c *Console) ConfigError(err error) {
	c.line(c.styles.failed.Render("Configuration error") + ": " + c.styles.warning.Render(err.Error()))
}

// ArgumentError reports a request the configuration cannot satisfy.
func (c *Console) ArgumentError(err error) {
	c.line(c.styles.failed.Render("Invalid request") + ": " + c.styles.warning.Render(err.Error()))
}

// LaunchError reports a command that could not be started.
func (c *Console) LaunchError(err error) {
	c.line(c.styles.failedBold.Render("Failed to launch a command") + ": " + c.styles.failed.Render(err.Error()))
}

// ExecutionFailed reports the representative failure of an invocation.
func (c *Console) ExecutionFailed(step, message string) {
	c.line(c.styles.failed.Render(version.Name) + " " + c.styles.failedBold.Render(step) + "] " + c.styles.failed.Render(message))
}

// Cancelled reports an interrupted invocation.
func (c *Console) Cancelled() {
	c.line(c.styles.failed.Render(version.Name) + "] " + c.styles.failedBold.Render("Cancelled"))
}

// Summary prints the final status line.
func (c *Console) Summary(success bool, elapsed time.Duration) {
	status, timing := c.styles.failedBold.Render("Failure"), c.styles.failed
	if success {
		status, timing = c.styles.successBold.Render("Success"), c.styles.success
	}
	c.line(c.styles.prefix.Render(version.Name) + "] " + status + " " + timing.Render(fmt.Sprintf("in %.3fs", elapsed.Seconds())))
}
