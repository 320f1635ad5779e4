package logr

import (
	"errors"
	"testing"

	arcflow "github.com/arcflow-dev/arcflow"
	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/sinks"
)

func TestLogrSinkInfoMapsVLevels(t *testing.T) {
	sink := sinks.NewMemorySink()
	logger := arcflow.New(arcflow.WithSink(sink), arcflow.WithMinimumLevel(core.TraceLevel))
	l := NewLogrSink(logger)

	l.Info(0, "at info")
	l.Info(1, "at debug")
	l.Info(2, "at trace")

	msgs := sink.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Count() = %d, want 3", len(msgs))
	}
	if msgs[0].Level != core.InfoLevel {
		t.Errorf("V(0) mapped to %v, want InfoLevel", msgs[0].Level)
	}
	if msgs[1].Level != core.DebugLevel {
		t.Errorf("V(1) mapped to %v, want DebugLevel", msgs[1].Level)
	}
	if msgs[2].Level != core.TraceLevel {
		t.Errorf("V(2) mapped to %v, want TraceLevel", msgs[2].Level)
	}
}

func TestLogrSinkErrorAttachesError(t *testing.T) {
	sink := sinks.NewMemorySink()
	logger := arcflow.New(arcflow.WithSink(sink), arcflow.WithMinimumLevel(core.TraceLevel))
	l := NewLogrSink(logger)

	want := errors.New("boom")
	l.Error(want, "failed")

	msgs := sink.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Count() = %d, want 1", len(msgs))
	}
	if msgs[0].Level != core.ErrorLevel {
		t.Errorf("Level = %v, want ErrorLevel", msgs[0].Level)
	}
	if got := msgs[0].Properties["error"]; got != want {
		t.Errorf("error property = %v, want %v", got, want)
	}
}

func TestLogrSinkWithValuesAndName(t *testing.T) {
	sink := sinks.NewMemorySink()
	logger := arcflow.New(arcflow.WithSink(sink), arcflow.WithMinimumLevel(core.TraceLevel))
	l := NewLogrSink(logger).WithValues("request_id", "abc").WithName("controller")

	l.Info(0, "reconciling")

	msgs := sink.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Count() = %d, want 1", len(msgs))
	}
	if got := msgs[0].Properties["request_id"]; got != "abc" {
		t.Errorf("request_id property = %v, want %q", got, "abc")
	}
	if got := msgs[0].Properties["logger"]; got != "controller" {
		t.Errorf("logger property = %v, want %q", got, "controller")
	}
}

func TestLogrSinkEnabled(t *testing.T) {
	sink := sinks.NewMemorySink()
	logger := arcflow.New(arcflow.WithSink(sink), arcflow.WithMinimumLevel(core.InfoLevel))
	l := NewLogrSink(logger)

	if !l.Enabled(0) {
		t.Error("Enabled(0) = false, want true at Info threshold")
	}
	if l.Enabled(1) {
		t.Error("Enabled(1) = true, want false below Info threshold")
	}
}
