// File: discovery.go
// Title: Configuration File Discovery Implementation
// Description: Locates a configuration file by walking from a start directory
//              towards the filesystem root and probing a list of candidate
//              file names in each directory.
// Author: Mike Stoffels
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-15
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of file discovery
// - 2026-10-15 v0.2.0: Upward search with per-candidate acceptance checks

package config

import (
	"fmt"
	"os"
	"path/filepath"

	dcerror "github.com/msto63/devcmd/foundation/core/error"
)

// Candidate is a file name to probe. Accept, when set, can reject a file that
// exists but does not hold the wanted configuration.
type Candidate struct {
	Filename string
	Accept   func(path string) (bool, error)
}

// DiscoveryOptions defines options for configuration file discovery
type DiscoveryOptions struct {
	Start      string      // Directory to start from (default: working directory)
	Candidates []Candidate // File names probed in order within each directory
}

// FindConfigFile searches Start and its ancestors for the first accepted candidate
func FindConfigFile(options DiscoveryOptions) (string, error) {
	start := options.Start
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", dcerror.Wrap(err, "cannot determine working directory").
				WithCode(dcerror.CodeConfigError).
				WithOperation("config.FindConfigFile")
		}
		start = wd
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", dcerror.Wrap(err, "cannot resolve start directory").
			WithCode(dcerror.CodeConfigError).
			WithOperation("config.FindConfigFile").
			WithDetail("start", start)
	}

	for {
		for _, c := range options.Candidates {
			path := filepath.Join(dir, c.Filename)
			info, statErr := os.Stat(path)
			if statErr != nil || info.IsDir() {
				continue
			}
			if c.Accept == nil {
				return path, nil
			}
			ok, acceptErr := c.Accept(path)
			if acceptErr != nil {
				return "", dcerror.Wrap(acceptErr, fmt.Sprintf("failed to inspect %s", path)).
					WithCode(dcerror.GetCode(acceptErr)).
					WithOperation("config.FindConfigFile").
					WithDetail("configPath", path)
			}
			if ok {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", dcerror.Newf("no configuration file found in %s or any parent directory", start).
		WithCode(dcerror.CodeNotFound).
		WithOperation("config.FindConfigFile").
		WithDetail("start", start).
		WithDetail("candidates", ListCandidateNames(options))
}

// ListCandidateNames returns the probed file names in order
func ListCandidateNames(options DiscoveryOptions) []string {
	names := make([]string, 0, len(options.Candidates))
	for _, c := range options.Candidates {
		names = append(names, c.Filename)
	}
	return names
}
