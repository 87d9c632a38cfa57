// Package config loads raw configuration documents.
//
// Package: config
// Title: Raw Configuration Documents
// Description: TOML files are decoded with BurntSushi/toml and YAML files with
//              gopkg.in/yaml.v3. Both produce a Document whose tables are
//              ordered Maps, so consumers that care about declaration order
//              (commands and tasks run in the order they are written) can
//              rely on it. FindConfigFile walks upward from a directory to
//              locate a file.
// Author: Mike Stoffels
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-15
//
// Usage:
//
//	doc, err := config.Load("dev-cmd.toml")
//	if err != nil { ... }
//	for _, name := range doc.Root.Keys() { ... }
package config
