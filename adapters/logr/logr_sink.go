package logr

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/arcflow-dev/arcflow/core"
)

// LogrSink implements logr.LogSink backed by a core.Logger.
//
// It adapts logr's V-level verbosity model onto the core.Level ladder,
// turns key/value pairs into ForContext properties, and tracks logr's
// dotted name hierarchy as a "logger" property.
type LogrSink struct {
	logger core.Logger
	name   string
	values []interface{}
}

var _ logr.LogSink = (*LogrSink)(nil)

// NewLogrSink creates a logr.LogSink that writes through the given logger.
func NewLogrSink(logger core.Logger) *LogrSink {
	return &LogrSink{
		logger: logger,
		values: []interface{}{},
	}
}

// Init receives optional information about the logr library for the LogSink.
// Currently a no-op; source location is not threaded through this adapter.
func (s *LogrSink) Init(info logr.RuntimeInfo) {}

// Enabled tests whether this LogSink is enabled at the given V-level.
//
// V-levels are mapped as follows:
//   - V(0) → Info
//   - V(1) → Debug
//   - V(2+) → Trace
func (s *LogrSink) Enabled(level int) bool {
	return s.logger.IsEnabled(logrLevelToLevel(level))
}

// Info logs a non-error message with the given key/value pairs, at the
// core.Level the V-level maps to. All key/value pairs (both persistent
// values and those passed here) are attached as properties via ForContext.
func (s *LogrSink) Info(level int, msg string, keysAndValues ...interface{}) {
	logger := s.applyKeysAndValues(s.logger, append(s.values, keysAndValues...)...)

	switch logrLevelToLevel(level) {
	case core.TraceLevel:
		logger.Trace(msg)
	case core.DebugLevel:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}

// Error logs an error message at ErrorLevel. err is attached under the
// "error" property; key/value pairs are attached the same way Info does.
func (s *LogrSink) Error(err error, msg string, keysAndValues ...interface{}) {
	logger := s.logger.ForContext("error", err)
	logger = s.applyKeysAndValues(logger, append(s.values, keysAndValues...)...)
	logger.Error(msg)
}

// WithValues returns a new LogSink with additional key/value pairs.
//
// These values will be included in all subsequent log messages from the
// returned LogSink. This is useful for adding persistent context like
// request IDs or user information.
//
// Example:
//
//	logger = logger.WithValues("request_id", "123", "user", "alice")
//	logger.Info("processing") // includes request_id and user
func (s *LogrSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	return &LogrSink{
		logger: s.logger,
		name:   s.name,
		values: append(s.values, keysAndValues...),
	}
}

// WithName returns a new LogSink with the specified name appended.
//
// Names create a hierarchy separated by dots. The full logger name is
// included as the "logger" property in all log events.
//
// Example:
//
//	logger = logger.WithName("controller").WithName("reconciler")
//	logger.Info("starting") // includes logger="controller.reconciler"
func (s *LogrSink) WithName(name string) logr.LogSink {
	var newName string
	if s.name == "" {
		newName = name
	} else {
		newName = s.name + "." + name
	}
	
	// Add logger name to context
	logger := s.logger.ForContext("logger", newName)
	
	return &LogrSink{
		logger: logger,
		name:   newName,
		values: s.values,
	}
}

// applyKeysAndValues attaches each key/value pair to logger via ForContext,
// returning the resulting (possibly new) logger.
func (s *LogrSink) applyKeysAndValues(logger core.Logger, keysAndValues ...interface{}) core.Logger {
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 >= len(keysAndValues) {
			logger = logger.ForContext(fmt.Sprint(keysAndValues[i]), nil)
			break
		}
		key := fmt.Sprint(keysAndValues[i])
		value := keysAndValues[i+1]
		logger = logger.ForContext(key, value)
	}
	return logger
}

// logrLevelToLevel converts a logr V-level (0=info, 1=debug, 2+=trace) to
// the matching core.Level.
func logrLevelToLevel(level int) core.Level {
	switch level {
	case 0:
		return core.InfoLevel
	case 1:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}