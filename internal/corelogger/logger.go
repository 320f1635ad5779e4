// Package corelogger implements the default core.Logger, shared by the
// root package's New and by logctx's built-in default logger so neither
// needs to import the other.
package corelogger

import (
	"fmt"
	"time"

	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/internal/gid"
	"github.com/arcflow-dev/arcflow/selflog"
	"github.com/arcflow-dev/arcflow/sinks"
)

// Logger is the default core.Logger implementation. It holds an immutable
// fan-out sink and minimum level, plus an immutable set of properties
// attached by ForContext; both are copy-on-write so a parent logger and
// its ForContext children never interfere with each other.
type Logger struct {
	name       string
	sink       core.Sink
	minLevel   core.Level
	properties map[string]any
}

var _ core.Logger = (*Logger)(nil)

// New builds a Logger dispatching to the sinks named by WithSink options,
// fanned out through a single DistributorSink.
func New(opts ...Option) *Logger {
	cfg := Config{MinimumLevel: core.InfoLevel}
	for _, opt := range opts {
		opt(&cfg)
	}

	dist := sinks.NewDistributorSink(cfg.Sinks...)

	return &Logger{
		name:       cfg.Name,
		sink:       dist,
		minLevel:   cfg.MinimumLevel,
		properties: cfg.Properties,
	}
}

// newWith returns a logger sharing l's sink and level but with its own
// property map, used by ForContext.
func (l *Logger) newWith(key string, value any) *Logger {
	props := make(map[string]any, len(l.properties)+1)
	for k, v := range l.properties {
		props[k] = v
	}
	props[key] = value
	return &Logger{
		name:       l.name,
		sink:       l.sink,
		minLevel:   l.minLevel,
		properties: props,
	}
}

func (l *Logger) Name() string { return l.name }

func (l *Logger) IsEnabled(level core.Level) bool {
	return level >= l.minLevel
}

// Log materializes a LogMessage from msg/args in the style of fmt.Sprintf
// when args are present, and forwards it to the sink if level is admitted.
func (l *Logger) Log(level core.Level, msg string, args ...any) {
	if !l.IsEnabled(level) {
		return
	}

	rendered := msg
	if len(args) > 0 {
		rendered = fmt.Sprintf(msg, args...)
	}

	message := &core.LogMessage{
		Level:      level,
		LoggerName: l.name,
		Timestamp:  time.Now(),
		Payload:    []byte(rendered),
		ThreadID:   gid.Current(),
	}
	if len(l.properties) > 0 {
		message.Properties = l.properties
	}

	defer func() {
		if r := recover(); r != nil {
			selflog.HandleError(l.name, fmt.Sprintf("sink emit panicked: %v", r))
		}
	}()
	l.sink.Emit(message)
}

func (l *Logger) Trace(msg string, args ...any)    { l.Log(core.TraceLevel, msg, args...) }
func (l *Logger) Debug(msg string, args ...any)    { l.Log(core.DebugLevel, msg, args...) }
func (l *Logger) Info(msg string, args ...any)     { l.Log(core.InfoLevel, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)     { l.Log(core.WarnLevel, msg, args...) }
func (l *Logger) Error(msg string, args ...any)    { l.Log(core.ErrorLevel, msg, args...) }
func (l *Logger) Critical(msg string, args ...any) { l.Log(core.CriticalLevel, msg, args...) }

// Flush asks the sink to flush. For a plain DistributorSink this flushes
// every child synchronously; for an AsyncSink it only enqueues the flush
// marker and returns, matching the async contract that Flush doesn't wait.
func (l *Logger) Flush() {
	if err := l.sink.Flush(); err != nil {
		selflog.HandleError(l.name, fmt.Sprintf("flush failed: %v", err))
	}
}

func (l *Logger) ForContext(key string, value any) core.Logger {
	return l.newWith(key, value)
}
