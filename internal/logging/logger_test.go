package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerDefaultConfig(t *testing.T) {
	logger := NewLogger(nil)
	if logger == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
}

func TestLoggerWithAddsFieldsToEveryLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf, JSON: true})

	scoped := logger.With("instance_id", "abc-123")
	scoped.Info("started")

	output := buf.String()
	if !strings.Contains(output, `"instance_id":"abc-123"`) {
		t.Errorf("expected instance_id field in output, got: %s", output)
	}
	if !strings.Contains(output, "started") {
		t.Errorf("expected message in output, got: %s", output)
	}
}

func TestLoggerNamedPrefixesLoggerName(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf, JSON: true})

	scoped := logger.Named("mqueue")
	scoped.Warn("overrun risk")

	output := buf.String()
	if !strings.Contains(output, `"logger":"mqueue"`) {
		t.Errorf("expected logger name field, got: %s", output)
	}
}

func TestLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf, JSON: true})

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should not appear") {
		t.Errorf("expected debug/info to be filtered out, got: %s", output)
	}
	if !strings.Contains(output, "should appear") {
		t.Errorf("expected the warn line to be present, got: %s", output)
	}
}

func TestGlobalLoggerFunctionsDispatchToDefault(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf, JSON: true}))

	Debug("debug message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Errorf("expected debug message, got: %s", output)
	}
	if !strings.Contains(output, `"key":"value"`) {
		t.Errorf("expected key=value field, got: %s", output)
	}

	buf.Reset()
	Info("info message")
	if !strings.Contains(buf.String(), "info message") {
		t.Errorf("expected info message, got: %s", buf.String())
	}

	buf.Reset()
	Warn("warning message")
	if !strings.Contains(buf.String(), "warning message") {
		t.Errorf("expected warning message, got: %s", buf.String())
	}

	buf.Reset()
	Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Errorf("expected error message, got: %s", buf.String())
	}
}
