package sinks

import (
	"sync"

	"github.com/arcflow-dev/arcflow/core"
)

// MemorySink stores messages in memory. It is intended for tests that want
// to assert on exactly what was emitted, not as a production destination.
type MemorySink struct {
	mu         sync.RWMutex
	messages   []*core.LogMessage
	level      core.Level
	fmt        core.Formatter
	flushCount int
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{level: core.TraceLevel}
}

// Emit stores a clone of msg, so later mutation by the caller (or pool
// reuse) can't retroactively change a recorded message.
func (m *MemorySink) Emit(msg *core.LogMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.Level < m.level {
		return
	}
	if m.fmt != nil {
		m.fmt.Format(msg)
	}
	m.messages = append(m.messages, msg.Clone())
}

// Flush records that a flush occurred; MemorySink holds everything already
// so there's nothing to drain, but FlushCount lets tests assert a sink
// upstream (e.g. AsyncSink) actually propagated the flush request.
func (m *MemorySink) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushCount++
	return nil
}

// FlushCount returns the number of times Flush has been called.
func (m *MemorySink) FlushCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flushCount
}

// SetPattern is a no-op.
func (m *MemorySink) SetPattern(pattern string) error { return nil }

// SetFormatter installs f. Format is invoked for its side effects (so
// formatter bugs surface in tests) but MemorySink still records Payload.
func (m *MemorySink) SetFormatter(f core.Formatter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fmt = f
}

// SetLevel sets the sink's minimum level.
func (m *MemorySink) SetLevel(level core.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

// Level returns the sink's minimum level.
func (m *MemorySink) Level() core.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.level
}

// Close keeps the stored messages, so tests can still assert on them after
// an owning DistributorSink or AsyncSink has closed its children.
func (m *MemorySink) Close() error {
	return nil
}

// Messages returns a copy of every stored message, in emit order.
func (m *MemorySink) Messages() []*core.LogMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*core.LogMessage, len(m.messages))
	copy(result, m.messages)
	return result
}

// Clear removes all stored messages.
func (m *MemorySink) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// Count returns the number of stored messages.
func (m *MemorySink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Find returns every stored message for which predicate returns true.
func (m *MemorySink) Find(predicate func(*core.LogMessage) bool) []*core.LogMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*core.LogMessage
	for _, msg := range m.messages {
		if predicate(msg) {
			result = append(result, msg)
		}
	}
	return result
}

// Last returns the most recently stored message, or nil if none.
func (m *MemorySink) Last() *core.LogMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}
