// ============================================================================
// devcmd - Development task runner
// ============================================================================
//
// Package:     planner
// Description: Turns requested names into a pruned, fully resolved plan
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

// Package planner resolves the commands and tasks requested on the command
// line into a Plan: a tree of Serial and Parallel nodes whose leaves carry the
// exact argv, environment and working directory of every process to launch.
//
// Planning never starts a process. Every request error (unknown names or
// skips, extra args nobody accepts) is reported as an ArgumentError here.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/msto63/devcmd/internal/model"
	"github.com/msto63/devcmd/pkg/core/config"
	"github.com/msto63/devcmd/pkg/core/logging"
	"github.com/msto63/devcmd/pkg/core/version"
)

// Options configures a Planner.
type Options struct {
	// Environ is the inherited environment in "key=value" form. Nil means
	// os.Environ().
	Environ []string

	Logger *logging.Logger
}

// Request is one invocation as given on the command line.
type Request struct {
	Names     []string
	Skips     []string
	ExtraArgs []string
	Parallel  bool

	// ExitStyle and GracePeriod override the configuration when set.
	ExitStyle   *model.ExitStyle
	GracePeriod *float64
}

// Plan is a fully resolved invocation.
type Plan struct {
	// Targets holds one node per surviving top-level name, in request order.
	Targets []Node

	// Parallel is true when the targets run concurrently. It is only set
	// with two or more targets.
	Parallel bool

	ExitStyle   model.ExitStyle
	GracePeriod time.Duration

	// Acceptor is the command receiving ExtraArgs, or nil.
	Acceptor  *model.Command
	ExtraArgs []string
}

// Root returns the plan as a single node.
func (p *Plan) Root() Node {
	if p.Parallel {
		return &Parallel{Members: p.Targets}
	}
	return &Serial{Steps: p.Targets}
}

// Planner builds plans against one configuration.
type Planner struct {
	cfg     *model.Configuration
	environ []string
	env     map[string]string
	logger  *logging.Logger
}

// New creates a Planner.
func New(cfg *model.Configuration, opts Options) *Planner {
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return &Planner{cfg: cfg, environ: environ, env: env, logger: logger.Named("planner")}
}

// Plan resolves a request.
func (p *Planner) Plan(req Request) (*Plan, error) {
	skips, err := p.checkSkips(req.Skips)
	if err != nil {
		return nil, err
	}
	targets, err := p.resolveTargets(req.Names)
	if err != nil {
		return nil, err
	}

	b := &builder{planner: p, skips: skips}
	plan := &Plan{
		ExitStyle:   p.exitStyle(req.ExitStyle),
		GracePeriod: p.gracePeriod(req.GracePeriod),
	}
	for _, target := range targets {
		b.target = model.NameOf(target)
		node, err := b.member(target, true)
		if err != nil {
			return nil, err
		}
		if node != nil {
			plan.Targets = append(plan.Targets, node)
		}
	}
	plan.Parallel = req.Parallel && len(plan.Targets) > 1

	for _, node := range plan.Targets {
		for _, e := range Execs(node) {
			if e.Command.AcceptsExtraArgs {
				plan.Acceptor = e.Command
				break
			}
		}
		if plan.Acceptor != nil {
			break
		}
	}
	if len(req.ExtraArgs) > 0 {
		if plan.Acceptor == nil {
			return nil, argumentError(fmt.Sprintf(
				"the following extra args were passed but none of the selected commands accept extra arguments: %s",
				strings.Join(req.ExtraArgs, " ")))
		}
		plan.ExtraArgs = append([]string(nil), req.ExtraArgs...)
		for _, node := range plan.Targets {
			for _, e := range Execs(node) {
				if e.Command == plan.Acceptor {
					e.Args = append(e.Args, plan.ExtraArgs...)
				}
			}
		}
	}

	acceptor := ""
	if plan.Acceptor != nil {
		acceptor = plan.Acceptor.Name
	}
	p.logger.Debug("planned invocation",
		"targets", len(plan.Targets),
		"parallel", plan.Parallel,
		"exit_style", plan.ExitStyle.String(),
		"grace_period", plan.GracePeriod.String(),
		"acceptor", acceptor)
	return plan, nil
}

func (p *Planner) checkSkips(names []string) (map[string]bool, error) {
	skips := make(map[string]bool, len(names))
	var missing []string
	for _, name := range names {
		if _, ok := p.cfg.Lookup(name); !ok {
			missing = append(missing, name)
			continue
		}
		skips[name] = true
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, argumentError(fmt.Sprintf(
			"you requested skips of %s which do not correspond to any configured command or task names",
			humanList(missing)))
	}
	return skips, nil
}

func (p *Planner) resolveTargets(names []string) ([]model.Member, error) {
	if len(names) == 0 {
		if p.cfg.Default == nil {
			lines := []string{fmt.Sprintf("usage: %s task|cmd [task|cmd...]", version.Name), ""}
			return nil, argumentError(append(lines, available(p.cfg)...)...)
		}
		return []model.Member{p.cfg.Default}, nil
	}

	targets := make([]model.Member, 0, len(names))
	for _, name := range names {
		m, ok := p.cfg.Lookup(name)
		if !ok {
			lines := []string{fmt.Sprintf("a requested task is not defined in %s: %q", p.source(), name), ""}
			return nil, argumentError(append(lines, available(p.cfg)...)...)
		}
		targets = append(targets, m)
	}
	return targets, nil
}

func (p *Planner) source() string {
	if p.cfg.Source == "" {
		return "the configuration"
	}
	return p.cfg.Source
}

func (p *Planner) exitStyle(override *model.ExitStyle) model.ExitStyle {
	switch {
	case override != nil:
		return *override
	case p.cfg.ExitStyle != nil:
		return *p.cfg.ExitStyle
	default:
		return model.AfterStep
	}
}

func (p *Planner) gracePeriod(override *float64) time.Duration {
	switch {
	case override != nil:
		return seconds(*override)
	case p.cfg.GracePeriod != nil:
		return seconds(*p.cfg.GracePeriod)
	default:
		return config.DefaultGracePeriod
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// builder materializes one target. Nesting alternates between serial and
// parallel; a task's own steps always start serial again.
type builder struct {
	planner *Planner
	skips   map[string]bool
	target  string
}

// member returns nil when the member is pruned.
func (b *builder) member(m model.Member, serial bool) (Node, error) {
	switch v := m.(type) {
	case *model.Command:
		if b.skips[v.Name] {
			return nil, nil
		}
		if ok, err := b.enabled("command", v.Name, v.When); err != nil || !ok {
			return nil, err
		}
		return b.exec(v), nil

	case *model.Task:
		if b.skips[v.Name] {
			return nil, nil
		}
		if ok, err := b.enabled("task", v.Name, v.When); err != nil || !ok {
			return nil, err
		}
		steps, err := b.group(v.Steps, true)
		if err != nil || len(steps) == 0 {
			return nil, err
		}
		return &Serial{Name: v.Name, Steps: steps}, nil

	case model.Group:
		nodes, err := b.group(v, serial)
		if err != nil || len(nodes) == 0 {
			return nil, err
		}
		if serial {
			return &Serial{Steps: nodes}, nil
		}
		return &Parallel{Members: nodes}, nil

	default:
		return nil, fmt.Errorf("unexpected plan member %T", m)
	}
}

// group materializes the members of g. Nested groups flip the mode.
func (b *builder) group(g model.Group, serial bool) ([]Node, error) {
	var nodes []Node
	for _, m := range g.Members {
		node, err := b.member(m, !serial)
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func (b *builder) enabled(kind, name string, when model.Predicate) (bool, error) {
	if when == nil {
		return true, nil
	}
	ok, err := when.Eval(b.planner.env)
	if err != nil {
		return false, argumentError(fmt.Sprintf("cannot evaluate when for %s %q: %v", kind, name, err))
	}
	if !ok {
		b.planner.logger.Debug("condition excludes node", kind, name, "when", when.String())
	}
	return ok, nil
}

func (b *builder) exec(cmd *model.Command) *Exec {
	execEnv := b.planner.cfg.Env

	args := append([]string(nil), cmd.Args...)
	if execEnv != nil && execEnv.Interpreter != "" {
		switch {
		case args[0] == "python":
			args[0] = execEnv.Interpreter
		case strings.HasSuffix(args[0], ".py"):
			args = append([]string{execEnv.Interpreter}, args...)
		}
	}

	env := newEnviron(b.planner.environ)
	for _, ev := range cmd.ExtraEnv {
		env.set(ev.Name, ev.Value)
	}
	if execEnv != nil && execEnv.BinDir != "" {
		path := execEnv.BinDir
		if current, ok := env.get("PATH"); ok && current != "" {
			path += string(filepath.ListSeparator) + current
		}
		env.set("PATH", path)
	}

	return &Exec{
		Command: cmd,
		Target:  b.target,
		Args:    args,
		Env:     env.list(),
		Dir:     cmd.Dir,
	}
}
