package sinks

import (
	"testing"

	"github.com/arcflow-dev/arcflow/core"
)

func TestMemorySinkRecordsClones(t *testing.T) {
	m := NewMemorySink()
	msg := &core.LogMessage{Level: core.InfoLevel, Payload: []byte("hello")}
	m.Emit(msg)

	msg.Payload[0] = 'H' // mutate the caller's copy after Emit returns

	got := m.Messages()
	if len(got) != 1 {
		t.Fatalf("Messages() len = %d, want 1", len(got))
	}
	if string(got[0].Payload) != "hello" {
		t.Errorf("stored payload = %q, want %q (Emit must clone, not alias)", got[0].Payload, "hello")
	}
}

func TestMemorySinkLevelThreshold(t *testing.T) {
	m := NewMemorySink()
	m.SetLevel(core.WarnLevel)
	m.Emit(&core.LogMessage{Level: core.DebugLevel})
	m.Emit(&core.LogMessage{Level: core.ErrorLevel})

	if got := m.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestMemorySinkFindAndLast(t *testing.T) {
	m := NewMemorySink()
	m.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("a")})
	m.Emit(&core.LogMessage{Level: core.ErrorLevel, Payload: []byte("b")})
	m.Emit(&core.LogMessage{Level: core.InfoLevel, Payload: []byte("c")})

	errors := m.Find(func(msg *core.LogMessage) bool { return msg.Level == core.ErrorLevel })
	if len(errors) != 1 || string(errors[0].Payload) != "b" {
		t.Errorf("Find(ErrorLevel) = %v, want one message with payload %q", errors, "b")
	}

	if last := m.Last(); last == nil || string(last.Payload) != "c" {
		t.Errorf("Last() = %v, want payload %q", last, "c")
	}
}

func TestMemorySinkClear(t *testing.T) {
	m := NewMemorySink()
	m.Emit(&core.LogMessage{Level: core.InfoLevel})
	m.Clear()
	if got := m.Count(); got != 0 {
		t.Errorf("Count() after Clear() = %d, want 0", got)
	}
	if m.Last() != nil {
		t.Error("Last() after Clear() should be nil")
	}
}

func TestMemorySinkCloseKeepsMessages(t *testing.T) {
	m := NewMemorySink()
	m.Emit(&core.LogMessage{Level: core.InfoLevel})
	if err := m.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if got := m.Count(); got != 1 {
		t.Errorf("Count() after Close() = %d, want 1", got)
	}
}
