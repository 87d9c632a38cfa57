//go:build !unix

package procmgr

import (
	"os"
	"os/exec"
)

// Without process groups the child itself is the only thing we can signal,
// and there is no portable graceful termination request.

func setProcessGroup(*exec.Cmd) {}

func (p *Process) signalTerminate() error {
	return p.kill()
}

func (p *Process) kill() error {
	return p.cmd.Process.Kill()
}

func (p *Process) sweep() {}

func exitStatus(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	return state.ExitCode()
}

func lookPath(name string, _ []string) (string, error) {
	return exec.LookPath(name)
}
