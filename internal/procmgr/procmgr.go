// ============================================================================
// devcmd - Development task runner
// ============================================================================
//
// Package:     procmgr
// Description: Process manager for command launch and termination
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package procmgr

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/devcmd/pkg/core/logging"
)

// waitDelay bounds how long Wait keeps reading output after the process
// exited, in case a detached grandchild still holds the pipe.
const waitDelay = 2 * time.Second

// ProcessStatus represents the lifecycle state of a managed process
type ProcessStatus int

const (
	StatusUnknown ProcessStatus = iota
	StatusRunning
	StatusTerminating
	StatusKilling
	StatusExited
)

func (s ProcessStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusTerminating:
		return "terminating"
	case StatusKilling:
		return "killing"
	case StatusExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Config describes one process to launch
type Config struct {
	// Name labels the process in logs, usually the command name
	Name string
	Args []string
	Env  []string
	Dir  string

	// Stdout and Stderr receive the process output. Nil means the
	// corresponding stream of the current process.
	Stdout io.Writer
	Stderr io.Writer
}

// Process is a running (or finished) child process. It is the leader of its
// own process group so that termination reaches everything it spawned.
type Process struct {
	ID        string
	Name      string
	PID       int
	StartedAt time.Time

	cmd      *exec.Cmd
	done     chan struct{}
	logger   *logging.Logger
	mu       sync.RWMutex
	status   ProcessStatus
	exitCode int
	waitErr  error
}

// Manager launches processes and tracks the ones still in flight
type Manager struct {
	logger    *logging.Logger
	mu        sync.RWMutex
	processes map[string]*Process
}

// New creates a new process manager
func New(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		logger:    logger.Named("procmgr"),
		processes: make(map[string]*Process),
	}
}

// Start launches a process. The returned error means nothing was started.
func (m *Manager) Start(cfg Config) (*Process, error) {
	if len(cfg.Args) == 0 {
		return nil, fmt.Errorf("no program given for %s", cfg.Name)
	}
	path, err := lookPath(cfg.Args[0], cfg.Env)
	if err != nil {
		return nil, err
	}

	cmd := &exec.Cmd{
		Path:      path,
		Args:      cfg.Args,
		Env:       cfg.Env,
		Dir:       cfg.Dir,
		Stdout:    cfg.Stdout,
		Stderr:    cfg.Stderr,
		WaitDelay: waitDelay,
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &Process{
		ID:        uuid.NewString(),
		Name:      cfg.Name,
		PID:       cmd.Process.Pid,
		StartedAt: time.Now(),
		cmd:       cmd,
		done:      make(chan struct{}),
		status:    StatusRunning,
	}
	p.logger = m.logger.With("command", p.Name, "pid", p.PID)

	m.mu.Lock()
	m.processes[p.ID] = p
	m.mu.Unlock()

	p.logger.Debug("process started", "args", cfg.Args, "dir", cfg.Dir)

	go m.monitor(p)
	return p, nil
}

// monitor waits for the process to exit and records the outcome
func (m *Manager) monitor(p *Process) {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.exitCode = exitStatus(p.cmd.ProcessState)
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) && !errors.Is(err, exec.ErrWaitDelay) {
		p.waitErr = err
	}
	p.status = StatusExited
	p.mu.Unlock()

	m.mu.Lock()
	delete(m.processes, p.ID)
	m.mu.Unlock()

	p.logger.Debug("process exited", "exit_code", p.exitCode, "elapsed", time.Since(p.StartedAt).Round(time.Millisecond).String())
	close(p.done)
}

// InFlight returns the processes that have not exited yet, oldest first
func (m *Manager) InFlight() []*Process {
	m.mu.RLock()
	result := make([]*Process, 0, len(m.processes))
	for _, p := range m.processes {
		result = append(result, p)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].StartedAt.Before(result[j].StartedAt) })
	return result
}

// TerminateAll runs the termination protocol on every in-flight process
// concurrently and returns once all of them exited.
func (m *Manager) TerminateAll(grace time.Duration) {
	var wg sync.WaitGroup
	for _, p := range m.InFlight() {
		wg.Add(1)
		go func(p *Process) {
			defer wg.Done()
			p.Terminate(grace, nil)
		}(p)
	}
	wg.Wait()
}

// Done is closed once the process exited and its outcome is recorded
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit code. Processes
// killed by a signal report 128+signal. A non-nil error means the outcome
// could not be collected at all.
func (p *Process) Wait() (int, error) {
	<-p.done
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitCode, p.waitErr
}

// Status returns the current lifecycle state
func (p *Process) Status() ProcessStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Process) setStatus(s ProcessStatus) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusExited {
		return false
	}
	p.status = s
	return true
}

// Terminate stops the process. With a positive grace period the group first
// gets a termination request and up to grace to exit; whatever is left after
// that is killed, and onKill (if set) is called just before. A grace period
// of zero or less kills right away. Terminate returns once the process
// exited.
func (p *Process) Terminate(grace time.Duration, onKill func()) {
	if grace > 0 {
		if !p.setStatus(StatusTerminating) {
			return
		}
		p.logger.Debug("sending termination request", "grace_period", grace.String())
		if err := p.signalTerminate(); err != nil {
			p.logger.Warn("failed to send termination request", "error", err)
		}

		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-p.done:
			p.sweep()
			return
		case <-timer.C:
		}
		if onKill != nil {
			onKill()
		}
	}

	if !p.setStatus(StatusKilling) {
		p.sweep()
		return
	}
	p.logger.Debug("killing process group")
	if err := p.kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Error("failed to kill process", "error", err)
	}
	<-p.done
	p.sweep()
}
