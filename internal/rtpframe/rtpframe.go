// Package rtpframe implements the RTP-frame-message thread-message variant
// (C6): an opaque RTP frame wrapped in a thread-message shell, with a
// process-wide bounded cache for shell reuse under sustained load.
//
// The frame representation itself is deliberately thin: raw bytes plus the
// handful of header fields callers in this module actually need (payload
// type, sequence number, timestamp). Full RTP parsing - extensions, CSRC
// lists, padding - is out of scope; see the non-goals.
package rtpframe

import (
	"sync"

	"github.com/flowpbx/ovcore/internal/threadmsg"
)

// Kind is the thread-message kind reserved for RTP-frame-messages.
const Kind = threadmsg.Base + 1

// Frame is a thin, owning wrapper around one RTP packet's bytes.
type Frame struct {
	Raw         []byte
	PayloadType uint8
	Sequence    uint16
	Timestamp   uint32
}

// ParseFrame extracts the fields this package cares about from a raw RTP
// packet. It does not validate the full RTP header beyond requiring the
// minimum 12-byte fixed header.
func ParseFrame(raw []byte) (*Frame, bool) {
	if len(raw) < 12 {
		return nil, false
	}
	return &Frame{
		Raw:         raw,
		PayloadType: raw[1] & 0x7f,
		Sequence:    uint16(raw[2])<<8 | uint16(raw[3]),
		Timestamp:   uint32(raw[4])<<24 | uint32(raw[5])<<16 | uint32(raw[6])<<8 | uint32(raw[7]),
	}, true
}

// Message is a thread-message carrying an owned *Frame.
type Message struct {
	*threadmsg.Message
	Frame *Frame
}

var (
	cacheMu  sync.Mutex
	cache    []*Message
	cacheCap int
)

// shellOf maps a Message's embedded *threadmsg.Message back to its owning
// *Message wrapper. Go has no container_of: a caller that only holds the
// embedded pointer (e.g. a thread-loop handler dispatching on
// *threadmsg.Message) needs Cast to recover the Frame.
var (
	shellOfMu sync.Mutex
	shellOf   = make(map[*threadmsg.Message]*Message)
)

// Cast recovers the *Message wrapping tm, or nil if tm was not constructed
// by this package's New.
func Cast(tm *threadmsg.Message) *Message {
	if tm == nil {
		return nil
	}
	shellOfMu.Lock()
	defer shellOfMu.Unlock()
	return shellOf[tm]
}

// EnableCaching lazily creates (or grows) a process-wide bounded cache of
// capacity n for message shells, idempotently. Calling it again with a
// larger n grows the cache; calling it with a smaller or equal n is a
// no-op (the cache never shrinks below a previously requested size).
func EnableCaching(n int) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if n > cacheCap {
		cacheCap = n
	}
}

// New wraps frame in a new (or cached) message shell.
func New(frame *Frame) *Message {
	cacheMu.Lock()
	var shell *Message
	if len(cache) > 0 {
		shell = cache[len(cache)-1]
		cache = cache[:len(cache)-1]
	}
	cacheMu.Unlock()

	if shell == nil {
		shell = &Message{}
	}
	shell.Frame = frame
	shell.Message = threadmsg.NewVariant(Kind, func(*threadmsg.Message) {
		shell.release()
	})

	shellOfMu.Lock()
	shellOf[shell.Message] = shell
	shellOfMu.Unlock()

	return shell
}

// release drops m's frame, forgets its registry entry, then tries to
// return the shell to the process-wide cache; if the cache is full (or
// not enabled), the shell is simply discarded, matching the original
// "release on cache-full" semantics under Go's memory model - there is no
// explicit free, only GC.
func (m *Message) release() {
	shellOfMu.Lock()
	delete(shellOf, m.Message)
	shellOfMu.Unlock()

	m.Frame = nil

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if len(cache) < cacheCap {
		cache = append(cache, m)
	}
}
