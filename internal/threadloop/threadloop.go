// Package threadloop implements the hybrid concurrency core (C7): a
// bridge between a single-threaded event loop (internal/eventloop) and a
// pool of worker goroutines, connected by two independent message paths.
package threadloop

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/flowpbx/ovcore/internal/eventloop"
	"github.com/flowpbx/ovcore/internal/threadmsg"
)

// Receiver selects which side of the bridge a Send targets.
type Receiver int

const (
	ToEventLoop Receiver = iota
	ToThread
)

// HandleInThread processes a message popped by a worker goroutine. The
// handler takes ownership of msg and must call msg.Free().
type HandleInThread func(self *ThreadLoop, msg *threadmsg.Message) bool

// HandleInLoop processes a message delivered to the event-loop thread.
// The handler takes ownership of msg and must call msg.Free().
type HandleInLoop func(self *ThreadLoop, msg *threadmsg.Message) bool

// Config controls queue sizing, worker count, lock-acquisition budget,
// and whether the to-loop path uses a queue at all (spec.md §4.7).
type Config struct {
	MessageQueueCapacity int
	LockTimeoutUsecs     int
	NumThreads           int
	DisableToLoopQueue   bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MessageQueueCapacity: 100,
		LockTimeoutUsecs:     100000,
		NumThreads:           4,
		DisableToLoopQueue:   false,
	}
}

func (c Config) lockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutUsecs) * time.Microsecond
}

// ThreadLoop bridges loop and a pool of worker goroutines.
type ThreadLoop struct {
	loop *eventloop.Loop

	handleInThread HandleInThread
	handleInLoop   HandleInLoop

	cfgMu sync.Mutex
	cfg   Config

	toThreads *ring

	toLoopMu     sync.Mutex
	toLoopRing   *ring // nil when DisableToLoopQueue
	toLoopDirect []*threadmsg.Message
	triggerFD    int
	catchFD      int

	workerWG    sync.WaitGroup
	stoppedMu   sync.Mutex
	workersDown bool
}

// New builds a ThreadLoop bound to loop (which the caller owns and runs),
// starting cfg.NumThreads workers and registering the to-loop catch socket
// with loop.
func New(loop *eventloop.Loop, cfg Config, inThread HandleInThread, inLoop HandleInLoop) (*ThreadLoop, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("threadloop: socketpair: %w", err)
	}

	tl := &ThreadLoop{
		loop:           loop,
		handleInThread: inThread,
		handleInLoop:   inLoop,
		cfg:            cfg,
		triggerFD:      fds[0],
		catchFD:        fds[1],
	}
	tl.toThreads = newRing(cfg.MessageQueueCapacity)
	if !cfg.DisableToLoopQueue {
		tl.toLoopRing = newRing(cfg.MessageQueueCapacity)
	}

	if err := loop.RegisterRead(tl.catchFD, tl.onCatchReadable); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, err
	}

	tl.startWorkers(cfg.NumThreads)
	return tl, nil
}

func (tl *ThreadLoop) startWorkers(n int) {
	tl.stoppedMu.Lock()
	tl.workersDown = false
	tl.stoppedMu.Unlock()

	for i := 0; i < n; i++ {
		tl.workerWG.Add(1)
		go tl.workerLoop()
	}
}

func (tl *ThreadLoop) workerLoop() {
	defer tl.workerWG.Done()
	for {
		msg, ok := tl.toThreads.popWait()
		if !ok {
			return
		}
		tl.handleInThread(tl, msg)
	}
}

// onCatchReadable is the event-loop IN handler for the catch socket: it
// reads exactly one wake-up byte regardless of how many are buffered
// (coalescing), then delivers exactly one message to handleInLoop.
func (tl *ThreadLoop) onCatchReadable(fd int) error {
	var b [1]byte
	if _, err := unix.Read(fd, b[:]); err != nil {
		return fmt.Errorf("threadloop: read catch socket: %w", err)
	}

	tl.toLoopMu.Lock()
	var msg *threadmsg.Message
	if tl.toLoopRing != nil {
		msg, _ = tl.toLoopRing.popNoWait()
	} else if len(tl.toLoopDirect) > 0 {
		msg = tl.toLoopDirect[0]
		tl.toLoopDirect = tl.toLoopDirect[1:]
	}
	tl.toLoopMu.Unlock()

	if msg == nil {
		return nil
	}
	tl.handleInLoop(tl, msg)
	return nil
}

// Send delivers msg to the requested side of the bridge. It returns false
// if the message was dropped (lock-timeout, or ring-full after the lock
// was acquired); on ring-full the message's deleter has already run.
func (tl *ThreadLoop) Send(msg *threadmsg.Message, receiver Receiver) bool {
	switch receiver {
	case ToThread:
		return tl.sendToThread(msg)
	case ToEventLoop:
		return tl.sendToLoop(msg)
	default:
		return false
	}
}

func (tl *ThreadLoop) sendToThread(msg *threadmsg.Message) bool {
	timeout := tl.currentConfig().lockTimeout()
	if !lockWithTimeout(&tl.toThreads.mu, timeout) {
		return false
	}
	defer tl.toThreads.mu.Unlock()

	if !tl.toThreads.pushLocked(msg) {
		msg.Free()
		return false
	}
	return true
}

func (tl *ThreadLoop) sendToLoop(msg *threadmsg.Message) bool {
	timeout := tl.currentConfig().lockTimeout()
	if !lockWithTimeout(&tl.toLoopMu, timeout) {
		return false
	}

	delivered := true
	if tl.toLoopRing != nil {
		if !lockWithTimeout(&tl.toLoopRing.mu, timeout) {
			tl.toLoopMu.Unlock()
			return false
		}
		if !tl.toLoopRing.pushLocked(msg) {
			msg.Free()
			delivered = false
		}
		tl.toLoopRing.mu.Unlock()
	} else {
		tl.toLoopDirect = append(tl.toLoopDirect, msg)
	}
	tl.toLoopMu.Unlock()

	if !delivered {
		return false
	}

	// A write failure leaves the message already enqueued; the next
	// successful wake-up still delivers it (spec.md §4.7).
	var b [1]byte
	unix.Write(tl.triggerFD, b[:])
	return true
}

func (tl *ThreadLoop) currentConfig() Config {
	tl.cfgMu.Lock()
	defer tl.cfgMu.Unlock()
	return tl.cfg
}

// StopThreads signals all workers to exit and waits for them to join.
// Workers keep handling messages already queued to-threads until the
// queue is empty, and only then exit.
func (tl *ThreadLoop) StopThreads() {
	tl.toThreads.markStopped()
	tl.workerWG.Wait()

	tl.stoppedMu.Lock()
	tl.workersDown = true
	tl.stoppedMu.Unlock()
}

// Reconfigure tears down and rebuilds the worker pool and both queues to
// match cfg, atomically from the caller's perspective: threads are always
// stopped before the queues are replaced.
func (tl *ThreadLoop) Reconfigure(cfg Config) {
	tl.StopThreads()

	tl.toThreads.drain()
	tl.toLoopMu.Lock()
	if tl.toLoopRing != nil {
		tl.toLoopRing.drain()
	}
	for _, m := range tl.toLoopDirect {
		m.Free()
	}
	tl.toLoopDirect = nil
	tl.toLoopMu.Unlock()

	tl.cfgMu.Lock()
	tl.cfg = cfg
	tl.cfgMu.Unlock()

	tl.toThreads = newRing(cfg.MessageQueueCapacity)
	tl.toLoopMu.Lock()
	if cfg.DisableToLoopQueue {
		tl.toLoopRing = nil
	} else {
		tl.toLoopRing = newRing(cfg.MessageQueueCapacity)
	}
	tl.toLoopMu.Unlock()

	tl.startWorkers(cfg.NumThreads)
}

// Free requires threads already stopped (via StopThreads); it drains both
// rings (invoking deleters) and closes the trigger/catch sockets.
func (tl *ThreadLoop) Free() error {
	tl.stoppedMu.Lock()
	stopped := tl.workersDown
	tl.stoppedMu.Unlock()
	if !stopped {
		return fmt.Errorf("threadloop: Free called with workers still running")
	}

	tl.toThreads.drain()
	tl.toLoopMu.Lock()
	if tl.toLoopRing != nil {
		tl.toLoopRing.drain()
	}
	for _, m := range tl.toLoopDirect {
		m.Free()
	}
	tl.toLoopDirect = nil
	tl.toLoopMu.Unlock()

	tl.loop.Unregister(tl.catchFD)
	if err := unix.Close(tl.triggerFD); err != nil {
		return fmt.Errorf("threadloop: close trigger socket: %w", err)
	}
	if err := unix.Close(tl.catchFD); err != nil {
		return fmt.Errorf("threadloop: close catch socket: %w", err)
	}
	return nil
}
