package threadloop

import (
	"sync"
	"time"

	"github.com/flowpbx/ovcore/internal/threadmsg"
)

// ring is a bounded FIFO of *threadmsg.Message. Every path that drops a
// message (overflow, drain-on-teardown) calls the message's own Free so
// nothing leaks (spec.md §4.7's "never leaked" invariant).
type ring struct {
	mu       sync.Mutex
	notEmpty *sync.Cond

	buf     []*threadmsg.Message
	head    int
	size    int
	stopped bool
}

func newRing(capacity int) *ring {
	r := &ring{buf: make([]*threadmsg.Message, capacity)}
	r.notEmpty = sync.NewCond(&r.mu)
	return r
}

func (r *ring) capacity() int { return len(r.buf) }

// pushLocked inserts m, assuming the caller already holds r.mu. Returns
// false if the ring is full; the caller decides whether that means the
// message should be freed.
func (r *ring) pushLocked(m *threadmsg.Message) bool {
	if r.size == len(r.buf) {
		return false
	}
	idx := (r.head + r.size) % len(r.buf)
	r.buf[idx] = m
	r.size++
	r.notEmpty.Signal()
	return true
}

// popWait blocks until an item is available or stop fires, then returns
// it. Returns ok=false only when stop fired with nothing left to drain.
func (r *ring) popWait() (*threadmsg.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.size == 0 {
		if r.stopped {
			return nil, false
		}
		r.notEmpty.Wait()
	}
	return r.popLocked(), true
}

// markStopped flags the ring as stopped and wakes every goroutine blocked
// in popWait so they can observe it.
func (r *ring) markStopped() {
	r.mu.Lock()
	r.stopped = true
	r.notEmpty.Broadcast()
	r.mu.Unlock()
}

func (r *ring) popLocked() *threadmsg.Message {
	m := r.buf[r.head]
	r.buf[r.head] = nil
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return m
}

// popNoWait returns the next message without blocking, or ok=false if
// empty.
func (r *ring) popNoWait() (*threadmsg.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == 0 {
		return nil, false
	}
	return r.popLocked(), true
}

// drain empties the ring, invoking Free on every remaining message, per
// the teardown contract.
func (r *ring) drain() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.size > 0 {
		m := r.popLocked()
		m.Free()
	}
}

// lockWithTimeout attempts to acquire mu, trying repeatedly for up to
// timeout before giving up. Go's sync.Mutex has no native try-lock-with-
// timeout primitive, so this is the try-lock-plus-short-sleep-loop
// fallback the design explicitly allows for such platforms.
func lockWithTimeout(mu *sync.Mutex, timeout time.Duration) bool {
	if mu.TryLock() {
		return true
	}
	deadline := time.Now().Add(timeout)
	const step = 50 * time.Microsecond
	for time.Now().Before(deadline) {
		if mu.TryLock() {
			return true
		}
		time.Sleep(step)
	}
	return false
}
