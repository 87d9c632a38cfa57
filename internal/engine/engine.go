// ============================================================================
// devcmd - Development task runner
// ============================================================================
//
// Package:     engine
// Description: Executes plans: scheduling, exit styles, termination
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

// Package engine runs a planner.Plan. Serial nodes run their steps strictly in
// order, parallel nodes launch all members and wait for every one of them.
// The exit style decides what a failing command does to the rest:
//
//	after-step  the failing sequence stops; a batch it belongs to settles,
//	            then nothing after that batch starts
//	immediate   everything still running is terminated
//	end         everything runs, failures are reported together
//
// Whatever happens, Run returns only after every process it started has
// exited.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msto63/devcmd/internal/model"
	"github.com/msto63/devcmd/internal/planner"
	"github.com/msto63/devcmd/internal/procmgr"
	"github.com/msto63/devcmd/pkg/core/logging"
)

// Reporter receives lifecycle events. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Executing(target, command string)
	Concurrently(target string, members []string)
	Output(target, command string, failed bool, output []byte)
	Terminating(pid int, command string)
	Killing(pid int, grace time.Duration)

	// Color reports whether the console renders color; children are then
	// asked to color their output too.
	Color() bool
}

// Options configures an Engine.
type Options struct {
	Reporter Reporter
	Logger   *logging.Logger

	// Stdout and Stderr are inherited by commands run outside a batch.
	Stdout io.Writer
	Stderr io.Writer
}

// Engine executes plans. Each Run is independent.
type Engine struct {
	reporter Reporter
	logger   *logging.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// New creates an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		reporter: opts.Reporter,
		logger:   opts.Logger,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
	}
	if e.reporter == nil {
		e.reporter = nopReporter{}
	}
	if e.logger == nil {
		e.logger = logging.Nop()
	}
	e.logger = e.logger.Named("engine")
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	return e
}

// errAborted is the cancellation cause used for immediate-style failures.
var errAborted = errors.New("invocation aborted after a failure")

// Run executes plan and returns nil, an *ExecutionError, a *LaunchError or
// ErrCancelled.
func (e *Engine) Run(ctx context.Context, plan *planner.Plan) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	inv := &invocation{
		engine: e,
		plan:   plan,
		procs:  procmgr.New(e.logger),
		cancel: cancel,
	}
	defer inv.procs.TerminateAll(plan.GracePeriod)

	start := time.Now()
	e.logger.Debug("invocation", "state", StateRunning.String(), "exit_style", plan.ExitStyle.String(), "targets", len(plan.Targets))

	switch root := plan.Root().(type) {
	case *planner.Parallel:
		inv.parallel(runCtx, "*", root, true)
	case *planner.Serial:
		for _, target := range root.Steps {
			if !inv.proceed(runCtx) {
				break
			}
			if !inv.run(runCtx, planner.Describe(target), target, false) && !inv.keepGoing() {
				break
			}
		}
	}

	err := inv.result(ctx)
	e.logger.Debug("invocation", "state", StateOf(err).String(), "elapsed", time.Since(start).Round(time.Millisecond).String())
	return err
}

// invocation is the state of one Run.
type invocation struct {
	engine *Engine
	plan   *planner.Plan
	procs  *procmgr.Manager
	cancel context.CancelCauseFunc

	// interrupted is set once cancellation terminated a process or kept a
	// step from starting.
	interrupted atomic.Bool

	mu        sync.Mutex
	failures  []*ExecutionError
	launchErr *LaunchError
}

// proceed reports whether a new step may still start. Only cancellation
// stops steps here; a failure ends the sequence it happens in through the
// return value of run.
func (inv *invocation) proceed(ctx context.Context) bool {
	if ctx.Err() != nil {
		inv.interrupted.Store(true)
		return false
	}
	return true
}

// keepGoing reports whether a failed step lets its sequence continue.
func (inv *invocation) keepGoing() bool {
	return inv.plan.ExitStyle == model.End
}

func (inv *invocation) fail(err *ExecutionError) {
	inv.mu.Lock()
	inv.failures = append(inv.failures, err)
	inv.mu.Unlock()

	inv.engine.logger.Debug("command failed", "command", err.StepName, "exit_code", err.ExitCode, "exit_style", inv.plan.ExitStyle.String())
	if inv.plan.ExitStyle == model.Immediate {
		inv.cancel(errAborted)
	}
}

func (inv *invocation) launchFailed(err *LaunchError) {
	inv.mu.Lock()
	if inv.launchErr == nil {
		inv.launchErr = err
	}
	inv.mu.Unlock()
	inv.cancel(err)
}

// result picks the outcome once everything settled. A parent cancellation
// that arrives after the last command finished leaves the outcome alone.
func (inv *invocation) result(parent context.Context) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.launchErr != nil {
		return inv.launchErr
	}
	if parent.Err() != nil && inv.interrupted.Load() {
		return ErrCancelled
	}
	switch len(inv.failures) {
	case 0:
		return nil
	case 1:
		return inv.failures[0]
	}
	if inv.plan.ExitStyle != model.End {
		return inv.failures[0]
	}

	total := 0
	for _, target := range inv.plan.Targets {
		total += len(planner.Execs(target))
	}
	names := make([]string, 0, len(inv.plan.Targets))
	for _, target := range inv.plan.Targets {
		names = append(names, planner.Describe(target))
	}
	failed := make([]string, len(inv.failures))
	for i, f := range inv.failures {
		failed[i] = f.StepName
	}
	return &ExecutionError{
		StepName: strings.Join(names, " "),
		Message:  fmt.Sprintf("%d of %d commands failed: %s", len(inv.failures), total, strings.Join(failed, ", ")),
		ExitCode: inv.failures[0].ExitCode,
		Failures: append([]*ExecutionError(nil), inv.failures...),
	}
}

// run executes one node and reports whether it succeeded. captured is set
// inside batches, where output is buffered and printed in one piece when the
// command completes.
func (inv *invocation) run(ctx context.Context, label string, n planner.Node, captured bool) bool {
	switch v := n.(type) {
	case *planner.Exec:
		proc := inv.start(ctx, v, captured)
		if proc == nil {
			return false
		}
		return inv.finish(ctx, proc)
	case *planner.Serial:
		return inv.serial(ctx, label, v, captured)
	case *planner.Parallel:
		return inv.parallel(ctx, label, v, false)
	}
	return true
}

// serial runs steps in order. Unless the exit style is end, a failed step
// ends the sequence; sibling branches of an enclosing batch carry on.
func (inv *invocation) serial(ctx context.Context, label string, n *planner.Serial, captured bool) bool {
	ok := true
	for i, step := range n.Steps {
		if !inv.proceed(ctx) {
			inv.engine.logger.Debug("step", "target", label, "index", i, "state", StepPending.String(), "reason", "cancelled")
			return false
		}
		inv.engine.logger.Debug("step", "target", label, "index", i, "name", planner.Describe(step), "state", StepRunning.String())
		stepOK := inv.run(ctx, label, step, captured)
		inv.engine.logger.Debug("step", "target", label, "index", i, "state", StepSettled.String(), "ok", stepOK)
		if !stepOK {
			ok = false
			if !inv.keepGoing() {
				return false
			}
		}
	}
	return ok
}

// parallel launches the direct command members in declaration order, runs
// nested members concurrently and waits for all of them. It succeeds when
// every member did. At the top level each member is labelled with its own
// name.
func (inv *invocation) parallel(ctx context.Context, label string, n *planner.Parallel, top bool) bool {
	if !inv.proceed(ctx) {
		return false
	}
	names := make([]string, len(n.Members))
	for i, m := range n.Members {
		names[i] = planner.Describe(m)
	}
	inv.engine.reporter.Concurrently(label, names)

	var (
		g      errgroup.Group
		failed atomic.Bool
	)
	for _, m := range n.Members {
		memberLabel := label
		if top {
			memberLabel = planner.Describe(m)
		}
		if ex, ok := m.(*planner.Exec); ok {
			proc := inv.start(ctx, ex, true)
			if proc == nil {
				failed.Store(true)
				continue
			}
			g.Go(func() error {
				if !inv.finish(ctx, proc) {
					failed.Store(true)
				}
				return nil
			})
			continue
		}
		g.Go(func() error {
			if !inv.run(ctx, memberLabel, m, true) {
				failed.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()
	return !failed.Load()
}

// running is a launched command.
type running struct {
	exec     *planner.Exec
	proc     *procmgr.Process
	captured bool
	output   *bytes.Buffer
}

// start launches a command. It returns nil when nothing was started: the
// invocation is winding down, the directory is gone or the launch failed.
func (inv *invocation) start(ctx context.Context, ex *planner.Exec, captured bool) *running {
	if !inv.proceed(ctx) {
		return nil
	}
	if _, err := os.Stat(ex.Dir); err != nil {
		inv.fail(&ExecutionError{
			StepName: ex.Name(),
			Message:  fmt.Sprintf("the cwd for command %q does not exist: %s", ex.Name(), ex.Dir),
			ExitCode: 1,
		})
		return nil
	}

	r := &running{exec: ex, captured: captured}
	cfg := procmgr.Config{
		Name:   ex.Name(),
		Args:   ex.Args,
		Env:    inv.environ(ex),
		Dir:    ex.Dir,
		Stdout: inv.engine.stdout,
		Stderr: inv.engine.stderr,
	}
	if captured {
		r.output = &bytes.Buffer{}
		cfg.Stdout, cfg.Stderr = r.output, r.output
	} else {
		inv.engine.reporter.Executing(ex.Target, ex.Name())
	}

	proc, err := inv.procs.Start(cfg)
	if err != nil {
		inv.launchFailed(&LaunchError{Command: ex.Name(), Err: err})
		return nil
	}
	r.proc = proc
	return r
}

// finish waits for a command, running the termination protocol if the
// invocation is cancelled first. It reports whether the command succeeded.
func (inv *invocation) finish(ctx context.Context, r *running) bool {
	grace := inv.plan.GracePeriod
	terminated := false
	select {
	case <-r.proc.Done():
	case <-ctx.Done():
		select {
		case <-r.proc.Done():
		default:
			terminated = true
			inv.interrupted.Store(true)
			inv.engine.reporter.Terminating(r.proc.PID, r.exec.Name())
			r.proc.Terminate(grace, func() { inv.engine.reporter.Killing(r.proc.PID, grace) })
		}
	}

	code, err := r.proc.Wait()
	inv.engine.logger.Debug("command settled", "command", r.exec.Name(), "pid", r.proc.PID, "status", r.proc.Status().String(), "exit_code", code, "terminated", terminated)
	if terminated {
		return false
	}
	if r.captured {
		inv.engine.reporter.Output(r.exec.Target, r.exec.Name(), code != 0 || err != nil, r.output.Bytes())
	}
	switch {
	case err != nil:
		inv.fail(&ExecutionError{StepName: r.exec.Name(), Message: err.Error(), ExitCode: 1})
		return false
	case code != 0:
		inv.fail(&ExecutionError{
			StepName: r.exec.Name(),
			Message:  fmt.Sprintf("command %s exited with code %d: %s", r.exec.Name(), code, r.exec.String()),
			ExitCode: code,
		})
		return false
	}
	return true
}

// environ adds FORCE_COLOR when the console is colored and the command's
// environment does not already decide about color.
func (inv *invocation) environ(ex *planner.Exec) []string {
	if !inv.engine.reporter.Color() {
		return ex.Env
	}
	for _, kv := range ex.Env {
		k, _, _ := strings.Cut(kv, "=")
		switch k {
		case "NO_COLOR", "FORCE_COLOR", "PYTHON_COLORS":
			return ex.Env
		}
	}
	return append(append([]string(nil), ex.Env...), "FORCE_COLOR=1")
}

type nopReporter struct{}

func (nopReporter) Executing(string, string)            {}
func (nopReporter) Concurrently(string, []string)       {}
func (nopReporter) Output(string, string, bool, []byte) {}
func (nopReporter) Terminating(int, string)             {}
func (nopReporter) Killing(int, time.Duration)          {}
func (nopReporter) Color() bool                         { return false }
