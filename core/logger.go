// Package core provides the fundamental interfaces and types shared by the
// async logging core: levels, messages, the Sink capability, and the Logger
// front-end that materialises a LogMessage and forwards it to sinks.
package core

// Logger is the front-end a caller invokes. It holds an ordered list of
// sinks and a minimum level; Log materialises a LogMessage and forwards it
// to each attached sink whose level admits it.
type Logger interface {
	// Log writes a message at the given level.
	Log(level Level, msg string, args ...any)

	// Trace, Debug, Info, Warn, Error and Critical are convenience
	// shortcuts for Log at the matching level.
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Critical(msg string, args ...any)

	// Flush asynchronously requests every attached sink to flush. The call
	// returns once the flush marker has been offered to each sink; it does
	// not wait for the flush to complete.
	Flush()

	// ForContext returns a logger that enriches every message it emits
	// with the given property, in addition to this logger's own
	// properties, and writes to the same sinks.
	ForContext(key string, value any) Logger

	// IsEnabled reports whether a message at the given level would be
	// processed by this logger's minimum-level check.
	IsEnabled(level Level) bool

	// Name returns the logger's name (the empty string for the default
	// logger installed by Context).
	Name() string
}
