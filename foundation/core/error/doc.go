// Package error provides the structured error type shared by devcmd packages.
//
// Package: error
// Title: Structured Errors
// Description: An Error carries a message, an optional cause, a Code that
//              classifies the failure, the operation that failed and a map of
//              details. Other packages define their own error kinds and
//              implement Coder so that GetCode and HasCode classify them too.
// Author: Mike Stoffels
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15
//
// Usage:
//
//	err := dcerror.Wrap(ioErr, "read config").
//		WithCode(dcerror.CodeConfigError).
//		WithOperation("config.Load").
//		WithDetail("path", path)
//
//	if dcerror.HasCode(err, dcerror.CodeConfigError) { ... }
package error
