// Package log provides structured logging for devcmd.
//
// Package: log
// Title: Structured Logging
// Description: A Logger writes leveled entries with persistent fields and a
//              correlation ID through a Formatter (text or JSON). Loggers are
//              immutable values; With* methods return derived copies that
//              share the underlying output.
// Author: Mike Stoffels
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15
//
// Usage:
//
//	logger := dclog.NewWithConfig(dclog.Config{
//		Level:  dclog.LevelDebug,
//		Format: dclog.FormatText,
//		Output: os.Stderr,
//		Name:   "engine",
//	}).WithCorrelationID(invocationID)
//
//	logger.Debug("process started", dclog.Fields{"pid": pid})
package log
