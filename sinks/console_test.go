package sinks

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arcflow-dev/arcflow/core"
)

func TestConsoleSinkWritesPayloadLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSinkWithWriter(&buf)

	c.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("hello")})
	c.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("world")})
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "hello" || lines[1] != "world" {
		t.Errorf("output = %q, want two lines \"hello\", \"world\"", buf.String())
	}
}

func TestConsoleSinkNoColorOnPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSinkWithWriter(&buf)

	c.Emit(&core.LogMessage{Level: core.ErrorLevel, Payload: []byte("boom")})
	c.Flush()

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("output contains an ANSI escape on a non-terminal writer: %q", buf.String())
	}
}

func TestConsoleSinkLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSinkWithWriter(&buf)
	c.SetLevel(core.WarnLevel)

	c.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("dropped")})
	c.Emit(&core.LogMessage{Level: core.WarnLevel, Payload: []byte("kept")})
	c.Flush()

	if got := strings.TrimRight(buf.String(), "\n"); got != "kept" {
		t.Errorf("output = %q, want %q", got, "kept")
	}
}

type upperFormatter struct{}

func (upperFormatter) Format(msg *core.LogMessage) []byte {
	return []byte(strings.ToUpper(string(msg.Payload)))
}

func TestConsoleSinkCustomFormatter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSinkWithWriter(&buf)
	c.SetFormatter(upperFormatter{})

	c.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("hi")})
	c.Flush()

	if got := strings.TrimRight(buf.String(), "\n"); got != "HI" {
		t.Errorf("output = %q, want %q", got, "HI")
	}
}
