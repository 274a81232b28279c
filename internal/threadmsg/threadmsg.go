// Package threadmsg implements the thread-message base type (C6): a
// tagged envelope carrying an optional JSON payload and/or socket handle
// between the event loop and the worker-thread pool of internal/threadloop.
package threadmsg

import (
	"github.com/flowpbx/ovcore/internal/value"
)

// Kind discriminates a message's payload shape. Kinds above Base are
// reserved for concrete variants (e.g. rtpframe.Kind), deliberately left
// open rather than enumerated exhaustively here.
type Kind int

const (
	// Unused is the reserved sentinel zero value; a message decoding to
	// Unused indicates a construction bug, not a valid in-flight message.
	Unused Kind = iota
	// Generic carries only a JSON payload and/or socket handle.
	Generic
	// Base marks the start of the range for downstream packages defining
	// their own message variants; their kinds are numbered above it.
	Base
)

const magic = 0x4f56544d // "OVTM"

// Deleter releases a Message's resources. Every constructor installs one;
// Free always invokes it, so a Message never leaks its payload.
type Deleter func(*Message)

// Message is the base thread-message envelope (spec.md §3's "tagged
// message with magic, kind, optional JSON payload, optional socket handle,
// owned-deleter"). Concrete variants (rtpframe.Message) embed it.
type Message struct {
	magic   uint32
	kind    Kind
	Payload *value.Value
	Socket  int
	HasSock bool
	deleter Deleter
}

// New constructs a Generic message. payload may be nil.
func New(payload *value.Value) *Message {
	return &Message{
		magic:   magic,
		kind:    Generic,
		Payload: payload,
		deleter: genericDeleter,
	}
}

// NewWithSocket constructs a Generic message that also carries a socket
// handle (e.g. a file descriptor donated across the thread boundary).
func NewWithSocket(payload *value.Value, socket int) *Message {
	m := New(payload)
	m.Socket = socket
	m.HasSock = true
	return m
}

// NewVariant constructs a Message of the given kind with a caller-supplied
// deleter, for use by packages defining their own message variants (e.g.
// rtpframe.Message). The caller's deleter will be invoked by Free.
func NewVariant(kind Kind, deleter Deleter) *Message {
	return &Message{magic: magic, kind: kind, deleter: deleter}
}

// Cast validates ptr's magic tag and returns it as a *Message, or nil if
// ptr is not a validly-constructed message. Mirrors the original API's
// "cast from opaque pointer" pattern, useful when a Message travels
// through a generic channel or ring buffer as an untyped pointer.
func Cast(ptr any) *Message {
	m, ok := ptr.(*Message)
	if !ok || m == nil || m.magic != magic {
		return nil
	}
	return m
}

// Kind returns the message's kind.
func (m *Message) Kind() Kind { return m.kind }

// Free invokes the message's deleter, which is responsible for releasing
// both the message shell and its payload (spec.md §3's invariant).
func (m *Message) Free() {
	if m == nil || m.deleter == nil {
		return
	}
	m.deleter(m)
}

func genericDeleter(m *Message) {
	if m.Payload != nil {
		m.Payload.Free()
		m.Payload = nil
	}
	m.magic = 0
}
