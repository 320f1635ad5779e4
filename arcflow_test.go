package arcflow

import (
	"testing"
	"time"

	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/sinks"
)

func TestNewWithSink(t *testing.T) {
	sink := sinks.NewMemorySink()
	l := New(WithSink(sink), WithMinimumLevel(core.TraceLevel))

	l.Info("hello")

	if got := sink.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
}

func TestWithAsyncWrapsConfiguredSinks(t *testing.T) {
	sink := sinks.NewMemorySink()
	l := New(WithSink(sink), WithMinimumLevel(core.TraceLevel), WithAsync(sinks.WithCapacity(16)))

	l.Info("hello")
	l.Flush()

	deadline := time.Now().Add(time.Second)
	for sink.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := sink.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1 (message should have reached the child through the async wrapper)", got)
	}
}

func TestDefaultLoggerConvenienceFunctions(t *testing.T) {
	sink := sinks.NewMemorySink()
	original := DefaultLogger()
	defer SetDefaultLogger(original)

	SetDefaultLogger(New(WithSink(sink), WithMinimumLevel(core.TraceLevel)))

	Info("via package function")
	Warn("also via package function")

	if got := sink.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}
}

func TestWithFilePanicsOnUnwritablePath(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("WithFile with an invalid path should panic at option-application time")
		}
	}()
	// /etc/passwd is a regular file; MkdirAll can never create a directory
	// underneath it, root or not.
	New(WithFile("/etc/passwd/sub/out.log"))
}
