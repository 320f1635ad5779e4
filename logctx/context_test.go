package logctx

import (
	"testing"

	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/internal/corelogger"
	"github.com/arcflow-dev/arcflow/sinks"
)

func TestInstanceIsASingleton(t *testing.T) {
	if Instance() != Instance() {
		t.Error("Instance() returned different pointers across calls")
	}
}

func TestDefaultLoggerInstalledBeforeAnyConfiguration(t *testing.T) {
	l := Instance().DefaultLogger()
	if l == nil {
		t.Fatal("DefaultLogger() returned nil before any SetDefaultLogger call")
	}
}

func TestSetDefaultLoggerRoundTrip(t *testing.T) {
	original := Instance().DefaultLogger()
	defer Instance().SetDefaultLogger(original)

	replacement := corelogger.New(corelogger.WithName("replacement"))
	Instance().SetDefaultLogger(replacement)

	if got := Instance().DefaultLogger(); got.Name() != "replacement" {
		t.Errorf("DefaultLogger().Name() = %q, want %q", got.Name(), "replacement")
	}
}

func TestSetDefaultLoggerIgnoresNil(t *testing.T) {
	original := Instance().DefaultLogger()
	defer Instance().SetDefaultLogger(original)

	Instance().SetDefaultLogger(nil)
	if got := Instance().DefaultLogger(); got == nil {
		t.Error("SetDefaultLogger(nil) must not clear the default logger")
	}
}

func TestWorkerPoolRoundTrip(t *testing.T) {
	defer Instance().Shutdown()

	if Instance().WorkerPool() != nil {
		t.Fatal("WorkerPool() should start nil")
	}
	async, err := sinks.NewAsyncSink(nil)
	if err != nil {
		t.Fatal(err)
	}
	Instance().SetWorkerPool(async)
	if Instance().WorkerPool() != async {
		t.Error("WorkerPool() did not return the installed pool")
	}
}

func TestShutdownClosesAndClearsWorkerPool(t *testing.T) {
	child := sinks.NewMemorySink()
	async, err := sinks.NewAsyncSink([]core.Sink{child})
	if err != nil {
		t.Fatal(err)
	}
	Instance().SetWorkerPool(async)

	Instance().Shutdown()

	if Instance().WorkerPool() != nil {
		t.Error("WorkerPool() should be nil after Shutdown")
	}
	// Close is idempotent; calling it again after Shutdown must not panic
	// or error, matching AsyncSink's documented idempotent Close contract.
	if err := async.Close(); err != nil {
		t.Errorf("Close() after Shutdown already closed it: %v", err)
	}
}

func TestShutdownWithNoWorkerPoolIsNoOp(t *testing.T) {
	Instance().Shutdown()
	Instance().Shutdown()
}
