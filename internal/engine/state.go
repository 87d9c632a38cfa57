package engine

import (
	"errors"
)

// State is the lifecycle of a whole invocation.
type State int

const (
	StateRunning State = iota
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the state is final.
func (s State) IsTerminal() bool {
	return s != StateRunning
}

// StateOf maps the result of Run to the final invocation state.
func StateOf(err error) State {
	switch {
	case err == nil:
		return StateSucceeded
	case errors.Is(err, ErrCancelled):
		return StateCancelled
	default:
		return StateFailed
	}
}

// StepState is the lifecycle of one step: a command or a batch.
type StepState int

const (
	StepPending StepState = iota
	StepRunning
	StepSettled
)

func (s StepState) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepSettled:
		return "settled"
	default:
		return "unknown"
	}
}
