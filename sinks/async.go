package sinks

import (
	"sync"
	"sync/atomic"

	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/internal/queue"
	"github.com/arcflow-dev/arcflow/selflog"
)

// DefaultQueueCapacity is the queue size used by the zero-argument
// AsyncSink constructors.
const DefaultQueueCapacity = 8192

// AsyncSink fans messages out to an embedded DistributorSink from a single
// worker goroutine, decoupling producers from however slow the children
// are. Producers never touch the children directly: every message, Flush
// request, and the terminate marker travel through the same BoundedQueue,
// so ordering between them is preserved per producer.
type AsyncSink struct {
	*DistributorSink

	queue  *queue.BoundedQueue
	policy atomic.Int32

	onStart func()
	onStop  func()

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// asyncConfig collects the values Option functions set, before the queue
// (and therefore the AsyncSink itself) is constructed.
type asyncConfig struct {
	capacity int
	policy   core.OverflowPolicy
	onStart  func()
	onStop   func()
}

// Option configures an AsyncSink at construction time.
type Option func(*asyncConfig)

// WithCapacity overrides the queue capacity (default DefaultQueueCapacity).
func WithCapacity(capacity int) Option {
	return func(c *asyncConfig) { c.capacity = capacity }
}

// WithOverflowPolicy sets the initial overflow policy (default Block).
func WithOverflowPolicy(policy core.OverflowPolicy) Option {
	return func(c *asyncConfig) { c.policy = policy }
}

// WithLifecycleHooks installs callbacks invoked once when the worker
// goroutine starts and once right before it exits.
func WithLifecycleHooks(onStart, onStop func()) Option {
	return func(c *asyncConfig) {
		c.onStart = onStart
		c.onStop = onStop
	}
}

// NewAsyncSink builds an AsyncSink dispatching to children, applying opts.
// It returns an error if the resolved capacity is invalid (zero, negative,
// or larger than queue.MaxCapacity); the worker goroutine is only started
// on success.
func NewAsyncSink(children []core.Sink, opts ...Option) (*AsyncSink, error) {
	cfg := asyncConfig{capacity: DefaultQueueCapacity, policy: core.Block}
	for _, opt := range opts {
		opt(&cfg)
	}

	q, err := queue.New(cfg.capacity)
	if err != nil {
		return nil, err
	}

	a := &AsyncSink{
		DistributorSink: NewDistributorSink(children...),
		queue:           q,
		onStart:         cfg.onStart,
		onStop:          cfg.onStop,
		done:            make(chan struct{}),
	}
	a.policy.Store(int32(cfg.policy))

	go a.worker()

	return a, nil
}

// Policy returns the current overflow policy.
func (a *AsyncSink) Policy() core.OverflowPolicy {
	return core.OverflowPolicy(a.policy.Load())
}

// SetPolicy changes the overflow policy used by future Emit calls.
func (a *AsyncSink) SetPolicy(policy core.OverflowPolicy) {
	a.policy.Store(int32(policy))
}

// Emit enqueues msg for asynchronous dispatch to the embedded children,
// honoring the sink's configured overflow policy. It never calls a child's
// Emit directly; the call returns as soon as the message is queued (or, for
// DiscardNew under a full queue, as soon as it decides to drop it).
func (a *AsyncSink) Emit(msg *core.LogMessage) {
	if msg.Level < a.DistributorSink.Level() {
		return
	}
	item := core.AsyncMessage{Kind: core.AsyncLog, Log: msg}
	switch core.OverflowPolicy(a.policy.Load()) {
	case core.OverrunOldest:
		a.queue.EnqueueOverrun(item)
	case core.DiscardNew:
		if !a.queue.EnqueueTry(item) && selflog.IsEnabled() {
			selflog.Printf("[async] queue full, discarded message (total discarded=%d)", a.queue.DiscardCount())
		}
	default:
		a.queue.Enqueue(item)
	}
}

// Flush enqueues a flush marker and returns immediately; it does not wait
// for the worker to act on it. The marker is offered under the sink's
// current overflow policy, exactly like a log message: under DiscardNew it
// is dropped when the queue is full, and under OverrunOldest it can be
// evicted by later messages before the worker reaches it.
func (a *AsyncSink) Flush() error {
	item := core.AsyncMessage{Kind: core.AsyncFlush}
	switch core.OverflowPolicy(a.policy.Load()) {
	case core.OverrunOldest:
		a.queue.EnqueueOverrun(item)
	case core.DiscardNew:
		a.queue.EnqueueTry(item)
	default:
		a.queue.Enqueue(item)
	}
	return nil
}

// OverrunCount reports how many messages the queue has evicted under
// OverrunOldest since the sink was created or last reset.
func (a *AsyncSink) OverrunCount() uint64 { return a.queue.OverrunCount() }

// DiscardCount reports how many messages were dropped under DiscardNew.
func (a *AsyncSink) DiscardCount() uint64 { return a.queue.DiscardCount() }

// ResetOverrunCount zeroes the overrun counter.
func (a *AsyncSink) ResetOverrunCount() { a.queue.ResetOverrunCount() }

// ResetDiscardCount zeroes the discard counter.
func (a *AsyncSink) ResetDiscardCount() { a.queue.ResetDiscardCount() }

// Close requests the worker goroutine to drain and terminate, then joins
// it. The terminate marker is always enqueued with blocking discipline
// regardless of the sink's configured overflow policy, so shutdown is
// never itself subject to being dropped or evicted. Close is idempotent;
// only the first call's error, if any, is returned.
func (a *AsyncSink) Close() error {
	a.closeOnce.Do(func() {
		a.queue.Enqueue(core.AsyncMessage{Kind: core.AsyncTerminate})
		<-a.done
		a.closeErr = a.DistributorSink.Close()
	})
	return a.closeErr
}

// worker is the sink's single consumer goroutine. It dequeues messages in
// FIFO order and dispatches Log/Flush/Terminate to the embedded
// DistributorSink, exiting only after observing a Terminate marker.
func (a *AsyncSink) worker() {
	if a.onStart != nil {
		a.onStart()
	}
	defer func() {
		if a.onStop != nil {
			a.onStop()
		}
		close(a.done)
	}()

	for {
		item := a.queue.Dequeue()
		switch item.Kind {
		case core.AsyncLog:
			a.dispatchLog(item.Log)
		case core.AsyncFlush:
			if err := a.DistributorSink.Flush(); err != nil && selflog.IsEnabled() {
				selflog.Printf("[async] flush failed: %v", err)
			}
		case core.AsyncTerminate:
			return
		}
	}
}

func (a *AsyncSink) dispatchLog(msg *core.LogMessage) {
	defer func() {
		if r := recover(); r != nil {
			if selflog.IsEnabled() {
				selflog.Printf("[async] worker panic dispatching message: %v", r)
			}
		}
	}()
	a.DistributorSink.Emit(msg)
}
