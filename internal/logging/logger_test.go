package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("node registered", slog.String("node_id", "abc"), slog.Float64("score", 0.8125))

	line := buf.String()
	if !strings.Contains(line, "node registered") {
		t.Fatalf("missing message: %q", line)
	}
	if !strings.Contains(line, "node_id=abc") {
		t.Fatalf("missing attr: %q", line)
	}
	if !strings.Contains(line, "score=0.8125") {
		t.Fatalf("missing float attr: %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("emitted")

	if strings.Contains(buf.String(), "suppressed") {
		t.Fatal("info line should have been filtered")
	}
	if !strings.Contains(buf.String(), "emitted") {
		t.Fatal("warn line should have been written")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Fatalf("unexpected json output: %s", buf.String())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
