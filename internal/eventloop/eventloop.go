// Package eventloop implements a minimal single-threaded, level-triggered
// I/O event loop on top of epoll, the owner side of internal/threadloop's
// event-loop/thread-pool bridge (C7).
package eventloop

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Handler is invoked when fd becomes readable. A returned error does not
// stop the loop, which discards it and keeps running; handlers must not
// block for long, since this runs on the single loop thread.
type Handler func(fd int) error

// Loop is a thin epoll wrapper: register file descriptors for level-
// triggered read readiness, then call Run on the thread that owns it.
type Loop struct {
	epfd int

	mu       sync.Mutex
	handlers map[int]Handler

	stop chan struct{}
	once sync.Once
}

// New creates a Loop backed by a fresh epoll instance.
func New() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("eventloop: epoll_create1: %w", err)
	}
	return &Loop{
		epfd:     epfd,
		handlers: make(map[int]Handler),
		stop:     make(chan struct{}),
	}, nil
}

// RegisterRead registers fd for level-triggered read readiness, invoking
// handler from Run's goroutine whenever fd has data available.
func (l *Loop) RegisterRead(fd int, handler Handler) error {
	l.mu.Lock()
	l.handlers[fd] = handler
	l.mu.Unlock()

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("eventloop: epoll_ctl(ADD, %d): %w", fd, err)
	}
	return nil
}

// Unregister removes fd from the loop.
func (l *Loop) Unregister(fd int) error {
	l.mu.Lock()
	delete(l.handlers, fd)
	l.mu.Unlock()

	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("eventloop: epoll_ctl(DEL, %d): %w", fd, err)
	}
	return nil
}

// Run blocks, dispatching ready file descriptors to their handlers, until
// Stop is called. Must be called from the thread that owns this Loop.
func (l *Loop) Run() error {
	events := make([]unix.EpollEvent, 16)
	for {
		select {
		case <-l.stop:
			return nil
		default:
		}

		n, err := unix.EpollWait(l.epfd, events, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("eventloop: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			l.mu.Lock()
			h := l.handlers[fd]
			l.mu.Unlock()
			if h == nil {
				continue
			}
			if err := h(fd); err != nil {
				// Handlers report errors for logging by their owner; the
				// loop itself has no logger and keeps running.
				continue
			}
		}
	}
}

// Stop causes Run to return. Safe to call once; subsequent calls are a
// no-op.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Close releases the epoll file descriptor. Call after Run has returned.
func (l *Loop) Close() error {
	return unix.Close(l.epfd)
}
