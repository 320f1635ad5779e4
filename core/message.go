package core

import "time"

// SourceLocation identifies where a LogMessage was produced. Every field is
// optional; a zero value means the caller did not request it.
type SourceLocation struct {
	File     string
	Line     int
	Function string
}

// IsZero reports whether no part of the location was captured.
func (s SourceLocation) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Function == ""
}

// LogMessage is a fully materialised, self-contained log record. It carries
// value semantics and is cheap to move: by the time one is constructed it
// holds no references to caller-owned buffers, so it can safely cross the
// queue from a producer goroutine to the async sink's worker goroutine.
type LogMessage struct {
	// Level is the severity of the message.
	Level Level

	// LoggerName identifies the logger that produced the message. It is
	// stable for the lifetime of the message.
	LoggerName string

	// SourceLocation is the optional file/line/function of the log call.
	SourceLocation SourceLocation

	// Timestamp is the wall-clock instant the caller invoked the log call.
	Timestamp time.Time

	// Payload is the already-formatted message body. Formatting happens on
	// the producer goroutine so that format-argument lifetimes never need
	// to outlive the call that produced them.
	Payload []byte

	// ThreadID identifies the producing goroutine, best-effort.
	ThreadID int64

	// Properties carries ambient structured context (e.g. from ForContext)
	// alongside the rendered Payload. The async core never inspects or
	// indexes these; they exist for downstream sinks that want them.
	Properties map[string]any

	// Exception is the error associated with the message, if any.
	Exception error
}

// Clone returns a deep-enough copy safe to retain beyond the caller's scope.
// Payload and Properties are copied so a pooled LogMessage can be recycled
// without aliasing a message already queued for a slow consumer.
func (m *LogMessage) Clone() *LogMessage {
	clone := *m
	if m.Payload != nil {
		clone.Payload = append([]byte(nil), m.Payload...)
	}
	if m.Properties != nil {
		clone.Properties = make(map[string]any, len(m.Properties))
		for k, v := range m.Properties {
			clone.Properties[k] = v
		}
	}
	return &clone
}
