// Package logr provides an adapter that lets a core.Logger back logr, the
// structured logging interface used throughout the Kubernetes ecosystem.
//
// # Basic usage
//
//	import (
//	    "github.com/arcflow-dev/arcflow"
//	    arcflowr "github.com/arcflow-dev/arcflow/adapters/logr"
//	    "github.com/arcflow-dev/arcflow/core"
//	)
//
//	logger := arcflowr.NewLogger(
//	    arcflow.WithConsole(),
//	    arcflow.WithMinimumLevel(core.DebugLevel),
//	)
//	logger.Info("reconciling", "namespace", "default", "name", "my-app")
//	logger.Error(err, "failed to update resource")
//
// # V-level mapping
//
// logr V-levels map onto core.Level as:
//   - V(0) → Info
//   - V(1) → Debug
//   - V(2+) → Trace
package logr

import (
	"github.com/go-logr/logr"

	arcflow "github.com/arcflow-dev/arcflow"
)

// NewLogger creates a logr.Logger backed by a core.Logger built from opts.
func NewLogger(opts ...arcflow.Option) logr.Logger {
	logger := arcflow.New(opts...)
	return logr.New(NewLogrSink(logger))
}
