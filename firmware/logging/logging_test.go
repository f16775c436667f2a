package logging

import (
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) WriteLineString(s string) { c.WriteLineBytes([]byte(s)) }

func (c *captureLogger) WriteLineBytes(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, string(b))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewWritesOneLinePerEntry(t *testing.T) {
	out := &captureLogger{}
	log := New(out, "info", "json", "therapy")
	log.Debug("hidden")
	log.Info("session started", zap.Uint8("intensity", 3))

	if len(out.lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(out.lines), out.lines)
	}
	line := out.lines[0]
	for _, want := range []string{`"msg":"session started"`, `"intensity":3`, `"service_name":"therapy"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %s", line, want)
		}
	}
	if strings.HasSuffix(line, "\n") {
		t.Fatal("line should not carry the trailing newline")
	}
}

func TestNewNilSink(t *testing.T) {
	log := New(nil, "debug", "console", "")
	log.Info("dropped")
}
