package engine

import (
	"fmt"

	dcerror "github.com/msto63/devcmd/foundation/core/error"
)

// ErrCancelled is returned when the invocation was interrupted from outside.
var ErrCancelled = dcerror.New("invocation cancelled").WithCode(dcerror.CodeCancelled)

// ExecutionError is a command that ran and failed, or an aggregate of
// several such failures.
type ExecutionError struct {
	// StepName names the failing command, or the targets for an aggregate.
	StepName string
	Message  string

	// ExitCode is representative: the command's own code, or the first
	// failure's code for an aggregate.
	ExitCode int

	// Failures holds the individual failures of an aggregate.
	Failures []*ExecutionError
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.StepName, e.Message)
}

// Code classifies the error for exit status mapping.
func (e *ExecutionError) Code() dcerror.Code {
	return dcerror.CodeExecutionFailed
}

// LaunchError means a command could not be started at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("cannot launch %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Code classifies the error for exit status mapping.
func (e *LaunchError) Code() dcerror.Code {
	return dcerror.CodeLaunchFailed
}
