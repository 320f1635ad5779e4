// Package queue implements the bounded multi-producer / multi-consumer
// message queue that backs an AsyncSink. A BoundedQueue is owned
// exclusively by the one AsyncSink that constructs it: its producers are
// that sink's callers, its single consumer is that sink's worker goroutine.
package queue

import (
	"errors"
	"sync"

	"github.com/arcflow-dev/arcflow/core"
)

// MaxCapacity is the largest capacity a BoundedQueue may be constructed
// with: 10 * 2^20 slots.
const MaxCapacity = 10 * (1 << 20)

// ErrInvalidCapacity is returned by New when capacity is zero, negative, or
// larger than MaxCapacity.
var ErrInvalidCapacity = errors.New("queue: capacity must be in [1, MaxCapacity]")

// BoundedQueue is a fixed-capacity FIFO ring buffer guarded by a mutex and
// two condition variables (not-empty, not-full), safe under an arbitrary
// number of producers and consumers. The queue never resizes.
type BoundedQueue struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	notFull  sync.Cond

	buf  []core.AsyncMessage
	head int
	size int

	overrunCounter uint64
	discardCounter uint64
}

// New constructs a BoundedQueue with room for capacity items. Capacity must
// be in [1, MaxCapacity]; anything else fails construction so the caller
// can reject it before starting a worker goroutine.
func New(capacity int) (*BoundedQueue, error) {
	if capacity <= 0 || capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}
	q := &BoundedQueue{
		buf: make([]core.AsyncMessage, capacity),
	}
	q.notEmpty.L = &q.mu
	q.notFull.L = &q.mu
	return q, nil
}

// Capacity returns the fixed number of slots the queue was constructed
// with.
func (q *BoundedQueue) Capacity() int {
	return len(q.buf)
}

// Len returns a snapshot of the current number of queued items.
func (q *BoundedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Enqueue blocks until a slot is available, then pushes item. It never
// drops a message.
func (q *BoundedQueue) Enqueue(item core.AsyncMessage) {
	q.mu.Lock()
	for q.size == len(q.buf) {
		q.notFull.Wait()
	}
	q.pushLocked(item)
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// EnqueueOverrun never blocks. When the queue is full it evicts the oldest
// element, increments the overrun counter, then pushes item. The eviction
// and the push happen under the same critical section so FIFO ordering is
// preserved for every consumer.
func (q *BoundedQueue) EnqueueOverrun(item core.AsyncMessage) {
	q.mu.Lock()
	if q.size == len(q.buf) {
		q.popLocked()
		q.overrunCounter++
	}
	q.pushLocked(item)
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// EnqueueTry never blocks. When the queue is full, item is dropped, the
// discard counter is incremented, and EnqueueTry returns false. Otherwise it
// pushes item and returns true.
func (q *BoundedQueue) EnqueueTry(item core.AsyncMessage) bool {
	q.mu.Lock()
	if q.size == len(q.buf) {
		q.discardCounter++
		q.mu.Unlock()
		return false
	}
	q.pushLocked(item)
	q.mu.Unlock()
	q.notEmpty.Signal()
	return true
}

// Dequeue blocks until an item is available, then pops it.
func (q *BoundedQueue) Dequeue() core.AsyncMessage {
	q.mu.Lock()
	for q.size == 0 {
		q.notEmpty.Wait()
	}
	item := q.popLocked()
	q.mu.Unlock()
	q.notFull.Signal()
	return item
}

// OverrunCount returns a snapshot of the overrun counter.
func (q *BoundedQueue) OverrunCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.overrunCounter
}

// DiscardCount returns a snapshot of the discard counter.
func (q *BoundedQueue) DiscardCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.discardCounter
}

// ResetOverrunCount resets the overrun counter to zero.
func (q *BoundedQueue) ResetOverrunCount() {
	q.mu.Lock()
	q.overrunCounter = 0
	q.mu.Unlock()
}

// ResetDiscardCount resets the discard counter to zero.
func (q *BoundedQueue) ResetDiscardCount() {
	q.mu.Lock()
	q.discardCounter = 0
	q.mu.Unlock()
}

// pushLocked appends item at the tail. Caller must hold q.mu and have
// verified there is room.
func (q *BoundedQueue) pushLocked(item core.AsyncMessage) {
	tail := (q.head + q.size) % len(q.buf)
	q.buf[tail] = item
	q.size++
}

// popLocked removes and returns the head item. Caller must hold q.mu and
// have verified the queue is non-empty.
func (q *BoundedQueue) popLocked() core.AsyncMessage {
	item := q.buf[q.head]
	q.buf[q.head] = core.AsyncMessage{}
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return item
}
