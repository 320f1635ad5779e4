package arcflow

import (
	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/internal/corelogger"
	"github.com/arcflow-dev/arcflow/logctx"
	"github.com/arcflow-dev/arcflow/sinks"
)

// WithConsole adds a console sink writing to os.Stdout.
func WithConsole() Option {
	return WithSink(sinks.NewConsoleSink())
}

// WithFile adds a file sink appending to path. Construction errors fail
// fast with a panic, matching other Option constructors that can't defer
// validation to first use.
func WithFile(path string) Option {
	return func(c *corelogger.Config) {
		sink, err := sinks.NewFileSink(path)
		if err != nil {
			panic(err)
		}
		c.Sinks = append(c.Sinks, sink)
	}
}

// WithAsync wraps every sink already configured in an AsyncSink, applying
// opts (capacity, overflow policy, lifecycle hooks). It must be the last
// Option that touches sinks; any WithSink/WithConsole/WithFile appearing
// after it in the New(...) call attaches outside the async boundary.
func WithAsync(opts ...sinks.Option) Option {
	return func(c *corelogger.Config) {
		async, err := sinks.NewAsyncSink(c.Sinks, opts...)
		if err != nil {
			panic(err)
		}
		c.Sinks = []core.Sink{async}
	}
}

// SetDefaultLogger installs l as the process-wide default logger that
// Info, Warn, and the other package-level convenience functions write
// through.
func SetDefaultLogger(l core.Logger) {
	logctx.Instance().SetDefaultLogger(l)
}

// DefaultLogger returns the process-wide default logger.
func DefaultLogger() core.Logger {
	return logctx.Instance().DefaultLogger()
}

// Shutdown closes the process-wide shared worker pool, if one was
// installed via logctx. Call it once during process shutdown.
func Shutdown() {
	logctx.Instance().Shutdown()
}

// Trace logs at TraceLevel through the default logger.
func Trace(msg string, args ...any) { DefaultLogger().Trace(msg, args...) }

// Debug logs at DebugLevel through the default logger.
func Debug(msg string, args ...any) { DefaultLogger().Debug(msg, args...) }

// Info logs at InfoLevel through the default logger.
func Info(msg string, args ...any) { DefaultLogger().Info(msg, args...) }

// Warn logs at WarnLevel through the default logger.
func Warn(msg string, args ...any) { DefaultLogger().Warn(msg, args...) }

// Error logs at ErrorLevel through the default logger.
func Error(msg string, args ...any) { DefaultLogger().Error(msg, args...) }

// Critical logs at CriticalLevel through the default logger.
func Critical(msg string, args ...any) { DefaultLogger().Critical(msg, args...) }

// Flush flushes the default logger.
func Flush() { DefaultLogger().Flush() }
