package core

// Formatter renders a LogMessage to bytes for a sink that wants an
// alternative layout. Concrete formatters (pattern-based, JSON, ...) are
// external collaborators; the async core only depends on this interface.
type Formatter interface {
	Format(msg *LogMessage) []byte
}

// Sink is the capability every destination the async core forwards to must
// implement: a side-effecting write, a side-effecting flush, reformat
// configuration, and a level threshold.
type Sink interface {
	// Emit writes the message to the sink's destination.
	Emit(msg *LogMessage)

	// Flush asks the sink to flush any internally buffered output.
	Flush() error

	// SetPattern reconfigures the sink's formatter from a pattern string.
	// Sinks that don't support patterns may treat this as a no-op.
	SetPattern(pattern string) error

	// SetFormatter installs a formatter instance. DistributorSink.SetFormatter
	// installs the same instance on every child; its SetFormatterFactory
	// calls a factory once per child so no formatter is shared.
	SetFormatter(f Formatter)

	// SetLevel sets the sink's own minimum level threshold.
	SetLevel(level Level)

	// Level returns the sink's current minimum level threshold.
	Level() Level

	// Close releases any resources held by the sink.
	Close() error
}
