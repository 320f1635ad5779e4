// Package sinks provides concrete core.Sink implementations: a fan-out
// distributor, an async wrapper over a bounded queue, and simple
// destinations (console, file, memory).
package sinks

import (
	"sync"

	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/selflog"
)

// mutexer is the locking discipline a DistributorSink uses around its child
// list and each dispatch. A real sync.Mutex is used when children may be
// added or removed concurrently with Emit; a no-op mutex is used when the
// caller already guarantees single-threaded access and wants to avoid the
// lock overhead.
type mutexer interface {
	Lock()
	Unlock()
}

type nopMutex struct{}

func (nopMutex) Lock()   {}
func (nopMutex) Unlock() {}

// DistributorSink fans a message out to an ordered list of child sinks. It
// implements core.Sink itself, so a DistributorSink can be nested inside
// another one, or wrapped by an AsyncSink.
type DistributorSink struct {
	mu       mutexer
	children []core.Sink
	level    core.Level
}

// NewDistributorSink creates a fan-out sink guarded by a real mutex, safe for
// concurrent Emit and AddSink/RemoveSink calls.
func NewDistributorSink(children ...core.Sink) *DistributorSink {
	return newDistributorSink(&sync.Mutex{}, children)
}

// NewDistributorSinkST creates a fan-out sink with no internal locking. Use
// it only when the caller already serializes all access to the returned
// sink; it exists to avoid paying for a mutex a single-threaded logger
// doesn't need.
func NewDistributorSinkST(children ...core.Sink) *DistributorSink {
	return newDistributorSink(nopMutex{}, children)
}

func newDistributorSink(mu mutexer, children []core.Sink) *DistributorSink {
	cp := make([]core.Sink, len(children))
	copy(cp, children)
	return &DistributorSink{mu: mu, children: cp, level: core.TraceLevel}
}

// AddSink appends a child sink to the end of the dispatch order.
func (d *DistributorSink) AddSink(s core.Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.children = append(d.children, s)
}

// RemoveSink removes the first occurrence of s from the dispatch order, if
// present.
func (d *DistributorSink) RemoveSink(s core.Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range d.children {
		if c == s {
			// Build a new slice so an Emit iterating the old one is unaffected.
			d.children = append(append([]core.Sink(nil), d.children[:i]...), d.children[i+1:]...)
			return
		}
	}
}

// Sinks returns a snapshot of the current child list.
func (d *DistributorSink) Sinks() []core.Sink {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]core.Sink, len(d.children))
	copy(cp, d.children)
	return cp
}

// Emit forwards msg to every child whose level admits it, in order. A child
// that panics is recovered and reported through selflog so one bad sink
// cannot take down the others or the caller.
func (d *DistributorSink) Emit(msg *core.LogMessage) {
	if msg.Level < d.level {
		return
	}
	d.mu.Lock()
	children := d.children
	d.mu.Unlock()

	for _, child := range children {
		dispatchOne(child, msg)
	}
}

func dispatchOne(child core.Sink, msg *core.LogMessage) {
	defer func() {
		if r := recover(); r != nil {
			if selflog.IsEnabled() {
				selflog.Printf("[distributor] sink panicked during emit: %v", r)
			}
		}
	}()
	if msg.Level < child.Level() {
		return
	}
	child.Emit(msg)
}

// Flush flushes every child in order, collecting failures through selflog
// rather than aborting on the first error. A child that panics is recovered
// and reported through selflog the same way.
func (d *DistributorSink) Flush() error {
	d.mu.Lock()
	children := d.children
	d.mu.Unlock()

	for _, child := range children {
		func() {
			defer func() {
				if r := recover(); r != nil && selflog.IsEnabled() {
					selflog.Printf("[distributor] sink panicked during flush: %v", r)
				}
			}()
			if err := child.Flush(); err != nil && selflog.IsEnabled() {
				selflog.Printf("[distributor] sink flush failed: %v", err)
			}
		}()
	}
	return nil
}

// SetPattern forwards the pattern to every child. Children that don't
// support patterns are expected to treat it as a no-op. A child that panics
// is recovered and reported through selflog.
func (d *DistributorSink) SetPattern(pattern string) error {
	d.mu.Lock()
	children := d.children
	d.mu.Unlock()

	for _, child := range children {
		func() {
			defer func() {
				if r := recover(); r != nil && selflog.IsEnabled() {
					selflog.Printf("[distributor] sink panicked during set pattern: %v", r)
				}
			}()
			if err := child.SetPattern(pattern); err != nil && selflog.IsEnabled() {
				selflog.Printf("[distributor] sink rejected pattern %q: %v", pattern, err)
			}
		}()
	}
	return nil
}

// SetFormatter installs f on every child. Satisfies core.Sink; callers that
// need a distinct formatter instance per child should use
// SetFormatterFactory instead.
func (d *DistributorSink) SetFormatter(f core.Formatter) {
	d.mu.Lock()
	children := d.children
	d.mu.Unlock()

	for _, child := range children {
		child.SetFormatter(f)
	}
}

// SetFormatterFactory calls factory once per child and installs the
// returned instance, so no formatter is shared between children.
func (d *DistributorSink) SetFormatterFactory(factory func() core.Formatter) {
	d.mu.Lock()
	children := d.children
	d.mu.Unlock()

	for _, child := range children {
		child.SetFormatter(factory())
	}
}

// SetLevel sets the distributor's own threshold. It does not touch child
// levels; each child keeps its own.
func (d *DistributorSink) SetLevel(level core.Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.level = level
}

// Level returns the distributor's own threshold.
func (d *DistributorSink) Level() core.Level {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level
}

// Close closes every child in order and returns the first error, if any,
// after attempting all of them.
func (d *DistributorSink) Close() error {
	d.mu.Lock()
	children := d.children
	d.mu.Unlock()

	var first error
	for _, child := range children {
		if err := child.Close(); err != nil {
			if first == nil {
				first = err
			}
			if selflog.IsEnabled() {
				selflog.Printf("[distributor] sink close failed: %v", err)
			}
		}
	}
	return first
}
