// Package logctx provides the process-wide default logger and worker-pool
// singleton, mirroring spdlog's details::context: a lock-free atomic slot
// for the default logger's fast path, and a recursive-mutex-guarded slot
// for the shared worker pool so teardown callbacks can safely call back in.
package logctx

import (
	"sync/atomic"

	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/internal/corelogger"
	"github.com/arcflow-dev/arcflow/sinks"
)

// Context is the process-wide home for the default Logger and the shared
// AsyncSink worker pool. There is exactly one instance, reached through
// Instance.
type Context struct {
	defaultLogger atomic.Pointer[core.Logger]

	poolMu   recursiveMutex
	workerTP *sinks.AsyncSink
}

var global = newContext()

func newContext() *Context {
	c := &Context{}
	var l core.Logger = newDefaultConsoleLogger()
	c.defaultLogger.Store(&l)
	return c
}

// Instance returns the process-wide Context singleton.
func Instance() *Context { return global }

// DefaultLogger returns the current default logger.
func (c *Context) DefaultLogger() core.Logger {
	return *c.defaultLogger.Load()
}

// DefaultLoggerRaw is identical to DefaultLogger; it exists to mirror the
// "raw" fast-path accessor spdlog exposes for its free functions
// (spdlog::info and friends). Callers must not call SetDefaultLogger
// concurrently with code relying on the logger returned here remaining
// valid for an extended window — the pointer swap itself is always safe,
// only the identity of "the" default logger can change underneath a long
// running caller.
func (c *Context) DefaultLoggerRaw() core.Logger {
	return c.DefaultLogger()
}

// SetDefaultLogger atomically replaces the default logger. The previous
// logger is not closed; callers that want its sinks flushed or released
// must do so themselves before replacing it.
func (c *Context) SetDefaultLogger(l core.Logger) {
	if l == nil {
		return
	}
	c.defaultLogger.Store(&l)
}

// SetWorkerPool installs the shared AsyncSink used by code that wants one
// worker pool shared across multiple loggers instead of one per logger.
func (c *Context) SetWorkerPool(tp *sinks.AsyncSink) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	c.workerTP = tp
}

// WorkerPool returns the shared AsyncSink, or nil if none has been
// installed.
func (c *Context) WorkerPool() *sinks.AsyncSink {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	return c.workerTP
}

// Shutdown closes the shared worker pool, if one is installed, and clears
// the slot. The recursive mutex lets a sink's Close callback call back into
// WorkerPool/SetWorkerPool during this same call without deadlocking.
func (c *Context) Shutdown() {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	if c.workerTP != nil {
		c.workerTP.Close()
		c.workerTP = nil
	}
}

// newDefaultConsoleLogger builds the logger installed before any user code
// runs: a single console sink at Info level, matching spdlog's ansicolor
// stdout default.
func newDefaultConsoleLogger() core.Logger {
	return corelogger.New(
		corelogger.WithSink(sinks.NewConsoleSink()),
		corelogger.WithMinimumLevel(core.InfoLevel),
	)
}
