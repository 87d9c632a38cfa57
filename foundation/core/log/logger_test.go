// File: logger_test.go
// Title: Logger Tests
// Description: Tests for logger configuration, derived loggers and error logging.
// Author: Mike Stoffels
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	dcerror "github.com/msto63/devcmd/foundation/core/error"
)

func TestNew(t *testing.T) {
	logger := New()

	if logger.GetLevel() != DefaultLevel() {
		t.Errorf("New() level = %v, want %v", logger.GetLevel(), DefaultLevel())
	}
	if logger.contextFields == nil {
		t.Error("New() should initialize context fields")
	}
}

func TestLoggerWithLevel(t *testing.T) {
	logger := New()
	derived := logger.WithLevel(LevelDebug)

	if derived == logger {
		t.Error("WithLevel() should return a new logger instance")
	}
	if derived.GetLevel() != LevelDebug {
		t.Errorf("WithLevel() level = %v, want %v", derived.GetLevel(), LevelDebug)
	}
	if logger.GetLevel() != DefaultLevel() {
		t.Error("WithLevel() should not modify original logger")
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered entries: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("output missing warn entry: %q", out)
	}
}

func TestLoggerFieldsAndCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf, Name: "engine"}).
		WithField("step", "ci").
		WithCorrelationID("0f8fad5b-d9cb-469f-a165-70867728950e")

	logger.Debug("process started", Fields{"pid": 42})

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	want := map[string]any{
		"logger":         "engine",
		"step":           "ci",
		"pid":            float64(42),
		"message":        "process started",
		"level":          "debug",
		"correlation_id": "0f8fad5b-d9cb-469f-a165-70867728950e",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %s = %v, want %v", k, got[k], v)
		}
	}
}

func TestWithFieldDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithConfig(Config{Level: LevelInfo, Output: &buf})
	_ = parent.WithField("child", true)

	parent.Info("parent")
	if strings.Contains(buf.String(), "child") {
		t.Errorf("parent output contains child field: %q", buf.String())
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelError, Output: &buf})

	err := dcerror.Wrap(errors.New("no such file"), "load config").
		WithCode(dcerror.CodeConfigError).
		WithOperation("config.Load").
		WithDetail("path", "dev-cmd.toml")
	logger.LogError(LevelError, fmt.Errorf("startup: %w", err))
	logger.LogError(LevelError, nil)
	logger.LogError(LevelDebug, err)

	out := buf.String()
	for _, want := range []string{
		"startup: load config: no such file",
		"error_code=CONFIG_ERROR",
		"error_operation=config.Load",
		"error_path=dev-cmd.toml",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("LogError() output missing %q: %q", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 1 {
		t.Errorf("LogError() wrote %d lines, want 1", n)
	}
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Output: &buf})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(l *Logger) {
			defer wg.Done()
			l.Info("line")
		}(logger.WithField("n", i))
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		if strings.Count(line, "[INF]") != 1 {
			t.Errorf("interleaved line: %q", line)
		}
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.IsLevelEnabled(LevelError) {
		t.Error("Discard() logger should not enable any level")
	}
	logger.Error("dropped")
}
