// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used to classify failures of a devcmd
//              invocation, from configuration loading through process execution.
// Author: Mike Stoffels
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-15 v0.2.0: Replaced service codes with invocation codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Invocation
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeExecutionFailed Code = "EXECUTION_FAILED"
	CodeLaunchFailed    Code = "LAUNCH_FAILED"
	CodeCancelled       Code = "CANCELLED"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// Categories returned by Code.Category
const (
	CategoryConfiguration = "configuration"
	CategoryRequest       = "request"
	CategoryExecution     = "execution"
	CategoryGeneric       = "generic"
)

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig, CodeNotFound:
		return CategoryConfiguration
	case CodeInvalidArgument, CodeInvalidInput:
		return CategoryRequest
	case CodeExecutionFailed, CodeLaunchFailed, CodeCancelled:
		return CategoryExecution
	default:
		return CategoryGeneric
	}
}
