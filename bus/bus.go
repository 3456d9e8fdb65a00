// Package bus guards hardware buses that are shared between polling tasks.
package bus

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultTimeout is how long a poller waits for the bus before giving up for this cycle
const DefaultTimeout = 10 * time.Millisecond

// Mutex is a lock with a bounded acquisition time. A caller that fails to
// acquire it treats the bus as transiently busy and retries on its next poll.
type Mutex struct {
	sem  *semaphore.Weighted
	busy atomic.Uint64
}

func NewMutex() *Mutex {
	return &Mutex{sem: semaphore.NewWeighted(1)}
}

// TryLock waits at most timeout for the bus and reports whether it was acquired
func (m *Mutex) TryLock(timeout time.Duration) bool {
	if m.sem.TryAcquire(1) {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := m.sem.Acquire(ctx, 1); err != nil {
		m.busy.Add(1)
		return false
	}
	return true
}

func (m *Mutex) Unlock() {
	m.sem.Release(1)
}

// Busy returns how many acquisitions have timed out
func (m *Mutex) Busy() uint64 {
	return m.busy.Load()
}
