package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_Constants(t *testing.T) {
	if LevelDebug != 0 {
		t.Errorf("LevelDebug = %d, want 0", LevelDebug)
	}
	if LevelError != 3 {
		t.Errorf("LevelError = %d, want 3", LevelError)
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("engine")

	if logger.name != "engine" {
		t.Errorf("name = %v, want engine", logger.name)
	}
}

func TestLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Wrap(NewLogger(LoggerConfig{Name: "test", Level: "error", Output: &buf}))

	logger.Info("suppressed")
	logger.WithLevel(LevelInfo).Info("emitted")

	if strings.Contains(buf.String(), "suppressed") {
		t.Errorf("info logged at error level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "emitted") {
		t.Errorf("WithLevel(LevelInfo) did not log: %q", buf.String())
	}
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := Wrap(NewLogger(LoggerConfig{
		Name:          "procmgr",
		Level:         "debug",
		Output:        &buf,
		CorrelationID: "abcdef0123456789",
	})).With("command", "fmt")

	logger.Debug("started", "pid", 42, "orphan")

	out := buf.String()
	for _, want := range []string{"{procmgr}", "(abcdef01)", "started", "command=fmt", "pid=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "orphan") {
		t.Errorf("odd trailing key should be dropped: %q", out)
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	root := Wrap(NewLogger(LoggerConfig{Name: "devcmd", Level: "warn", Output: &buf}))
	root.Named("engine").Warn("halting")

	if !strings.Contains(buf.String(), "{engine}") {
		t.Errorf("Named() logger name missing: %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	Nop().Error("dropped", "k", "v")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"warning", "warn"},
		{"error", "error"},
		{"invalid", "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input).String(); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("devcmd")

	if cfg.Name != "devcmd" {
		t.Errorf("Name = %v, want devcmd", cfg.Name)
	}
	if cfg.Level != "warn" {
		t.Errorf("Level = %v, want warn", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %v, want text", cfg.Format)
	}
}

func TestToFields(t *testing.T) {
	if fields := toFields(); fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	fields := toFields("key1", "value1", "key2", 42)
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Nop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
