package sinks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arcflow-dev/arcflow/core"
)

func TestFileSinkAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	f, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}

	f.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("first")})
	f.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("second")})
	if err := f.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Errorf("file contents = %q, want two lines \"first\", \"second\"", contents)
	}
}

func TestFileSinkCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.log")
	if _, err := NewFileSink(path); err != nil {
		t.Fatalf("NewFileSink with missing parent dirs: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file was not created: %v", err)
	}
}

func TestFileSinkCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	f, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
}

func TestFileSinkEmitAfterCloseIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	f, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	f.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("dropped")})

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 0 {
		t.Errorf("file contents after Emit-after-Close = %q, want empty", contents)
	}
}

func TestFileSinkLevelThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	f, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}
	f.SetLevel(core.WarnLevel)
	f.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("dropped")})
	f.Emit(&core.LogMessage{Level: core.ErrorLevel, Payload: []byte("kept")})
	f.Flush()

	contents, _ := os.ReadFile(path)
	if strings.TrimRight(string(contents), "\n") != "kept" {
		t.Errorf("file contents = %q, want %q", contents, "kept")
	}
}
