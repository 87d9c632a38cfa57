// ============================================================================
// devcmd - Development task runner
// ============================================================================
//
// Package:     version
// Description: Central version information for the devcmd binary
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Name is the program name shown in usage and version output
const Name = "devcmd"

// Version is the release of the devcmd binary
const Version = "0.4.0"

// Build metadata, overridden with -ldflags at release time
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns the one-line version banner
func String() string {
	return fmt.Sprintf("%s %s", Name, Version)
}

// Detailed returns the version banner with build and runtime information
func Detailed() string {
	return fmt.Sprintf("%s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s",
		String(), GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
