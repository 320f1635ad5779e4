// Package arcflow ties the async logging core together: a Logger
// front-end, a Context process-wide default, and the sinks package's
// DistributorSink/AsyncSink as the dispatch layer.
package arcflow

import (
	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/internal/corelogger"
)

// Option is a functional option for configuring a logger built by New.
type Option = corelogger.Option

// WithMinimumLevel sets the logger's own minimum level threshold.
func WithMinimumLevel(level core.Level) Option { return corelogger.WithMinimumLevel(level) }

// WithName sets the logger's name, reported by Logger.Name and carried
// into every LogMessage it produces.
func WithName(name string) Option { return corelogger.WithName(name) }

// WithSink adds a sink the logger forwards admitted messages to.
func WithSink(sink core.Sink) Option { return corelogger.WithSink(sink) }

// WithProperty attaches a property every message from this logger carries,
// equivalent to calling ForContext once at construction time.
func WithProperty(name string, value any) Option { return corelogger.WithProperty(name, value) }

// WithProperties attaches multiple properties at once.
func WithProperties(properties map[string]any) Option {
	return corelogger.WithProperties(properties)
}
