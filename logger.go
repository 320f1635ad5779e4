package arcflow

import (
	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/internal/corelogger"
)

// New builds a Logger dispatching to the sinks named by WithSink options,
// fanned out through a single DistributorSink.
func New(opts ...Option) core.Logger {
	return corelogger.New(opts...)
}
