package sinks

import (
	"errors"
	"testing"

	"github.com/arcflow-dev/arcflow/core"
)

// panicSink panics on every Emit; used to verify DistributorSink's fan-out
// continues past a misbehaving child.
type panicSink struct {
	*MemorySink
}

func newPanicSink() *panicSink {
	return &panicSink{MemorySink: NewMemorySink()}
}

func (p *panicSink) Emit(msg *core.LogMessage) {
	panic("boom")
}

// errFlushSink fails Flush to exercise DistributorSink.Flush's error
// collection path.
type errFlushSink struct {
	*MemorySink
}

func (e *errFlushSink) Flush() error { return errors.New("flush failed") }

func TestDistributorSinkFanOut(t *testing.T) {
	a, b, c := NewMemorySink(), NewMemorySink(), NewMemorySink()
	d := NewDistributorSink(a, b, c)

	for i := 0; i < 1024; i++ {
		d.Emit(&core.LogMessage{Level: core.InfoLevel})
	}

	for i, s := range []*MemorySink{a, b, c} {
		if got := s.Count(); got != 1024 {
			t.Errorf("child %d received %d messages, want 1024", i, got)
		}
	}
}

func TestDistributorSinkEmitOrder(t *testing.T) {
	var order []int
	order1 := &orderSink{MemorySink: NewMemorySink(), id: 1, order: &order}
	order2 := &orderSink{MemorySink: NewMemorySink(), id: 2, order: &order}
	d := NewDistributorSink(order1, order2)

	d.Emit(&core.LogMessage{Level: core.InfoLevel})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("dispatch order = %v, want [1 2]", order)
	}
}

type orderSink struct {
	*MemorySink
	id    int
	order *[]int
}

func (o *orderSink) Emit(msg *core.LogMessage) {
	*o.order = append(*o.order, o.id)
}

func TestDistributorSinkSurvivesPanickingChild(t *testing.T) {
	bad := newPanicSink()
	good := NewMemorySink()
	d := NewDistributorSink(bad, good)

	d.Emit(&core.LogMessage{Level: core.InfoLevel})

	if got := good.Count(); got != 1 {
		t.Errorf("sink after panicking sibling: got %d messages, want 1", got)
	}
}

func TestDistributorSinkFlushCollectsFailures(t *testing.T) {
	failing := &errFlushSink{MemorySink: NewMemorySink()}
	good := NewMemorySink()
	d := NewDistributorSink(failing, good)

	if err := d.Flush(); err != nil {
		t.Errorf("Flush() = %v, want nil (failures are reported via selflog, not returned)", err)
	}
}

func TestDistributorSinkAddRemove(t *testing.T) {
	d := NewDistributorSink()
	s := NewMemorySink()
	d.AddSink(s)
	if got := len(d.Sinks()); got != 1 {
		t.Fatalf("Sinks() len = %d, want 1", got)
	}
	d.RemoveSink(s)
	if got := len(d.Sinks()); got != 0 {
		t.Fatalf("Sinks() len after remove = %d, want 0", got)
	}
}

func TestDistributorSinkLevelThreshold(t *testing.T) {
	child := NewMemorySink()
	d := NewDistributorSink(child)
	d.SetLevel(core.WarnLevel)

	d.Emit(&core.LogMessage{Level: core.InfoLevel})
	d.Emit(&core.LogMessage{Level: core.WarnLevel})

	if got := child.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1 (only the Warn message should pass the distributor's own threshold)", got)
	}
}

func TestDistributorSinkSetFormatterFactory(t *testing.T) {
	d := NewDistributorSink(NewMemorySink(), NewMemorySink())
	calls := 0
	d.SetFormatterFactory(func() core.Formatter {
		calls++
		return nil
	})
	if calls != 2 {
		t.Errorf("factory called %d times, want 2 (once per child)", calls)
	}
}
