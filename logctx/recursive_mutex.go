package logctx

import (
	"runtime"
	"sync"

	"github.com/arcflow-dev/arcflow/internal/gid"
)

// recursiveMutex is a reentrant mutex: the goroutine already holding the
// lock can call Lock again without deadlocking itself. Context needs this
// because a sink's Close (invoked while Context.Shutdown holds the lock)
// may itself call back into Context.WorkerPool or SetWorkerPool, e.g. from
// an error handler installed on that sink.
type recursiveMutex struct {
	mu    sync.Mutex
	owner int64
	count int
}

// Lock acquires the mutex. If the calling goroutine already holds it, Lock
// just increments the recursion count instead of blocking.
func (m *recursiveMutex) Lock() {
	id := gid.Current()

	m.mu.Lock()
	if m.owner == id && m.count > 0 {
		m.count++
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.acquire(id)
}

// acquire spins on the underlying mutex until this goroutine becomes the
// owner. It's a small busy-wait rather than a condvar because contention on
// Context's lock is expected to be rare and brief (construction and
// shutdown only).
func (m *recursiveMutex) acquire(id int64) {
	for {
		m.mu.Lock()
		if m.count == 0 {
			m.owner = id
			m.count = 1
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()
		runtime.Gosched()
	}
}

// Unlock decrements the recursion count, releasing the lock entirely once
// it reaches zero. Unlock by a goroutine that isn't the current owner is a
// programming error and panics, matching sync.Mutex's own behavior for an
// unlock-of-unlocked-mutex.
func (m *recursiveMutex) Unlock() {
	id := gid.Current()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner != id || m.count == 0 {
		panic("logctx: unlock of recursive mutex not held by calling goroutine")
	}
	m.count--
	if m.count == 0 {
		m.owner = 0
	}
}
