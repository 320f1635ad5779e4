package corelogger

import (
	"github.com/arcflow-dev/arcflow/core"
)

// Config holds the configuration accumulated by applying a logger's
// Options before New builds the logger.
type Config struct {
	MinimumLevel core.Level
	Name         string
	Sinks        []core.Sink
	Properties   map[string]any
}

// Option is a functional option for configuring a logger.
type Option func(*Config)

// WithMinimumLevel sets the logger's own minimum level threshold.
func WithMinimumLevel(level core.Level) Option {
	return func(c *Config) { c.MinimumLevel = level }
}

// WithName sets the logger's name.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithSink adds a sink the logger forwards admitted messages to.
func WithSink(sink core.Sink) Option {
	return func(c *Config) { c.Sinks = append(c.Sinks, sink) }
}

// WithProperty attaches a property every message from this logger carries.
func WithProperty(name string, value any) Option {
	return func(c *Config) {
		if c.Properties == nil {
			c.Properties = make(map[string]any)
		}
		c.Properties[name] = value
	}
}

// WithProperties attaches multiple properties at once.
func WithProperties(properties map[string]any) Option {
	return func(c *Config) {
		if c.Properties == nil {
			c.Properties = make(map[string]any, len(properties))
		}
		for k, v := range properties {
			c.Properties[k] = v
		}
	}
}
