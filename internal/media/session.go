// Package media adapts the teacher's RTP relay and session-lifecycle code
// into a concrete demo consumer for the thread-loop, codec framework, and
// JSON value model: a Session pairs one internal/threadloop.ThreadLoop to
// a decode codec and an encode codec, carrying RTP packets end-to-end as
// internal/threadmsg messages wrapping internal/rtpframe.Frame payloads.
package media

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/flowpbx/ovcore/internal/codec"
	"github.com/flowpbx/ovcore/internal/codecfactory"
	"github.com/flowpbx/ovcore/internal/eventloop"
	"github.com/flowpbx/ovcore/internal/rtpframe"
	"github.com/flowpbx/ovcore/internal/threadloop"
	"github.com/flowpbx/ovcore/internal/threadmsg"
	"github.com/flowpbx/ovcore/internal/value"
)

// OutputFunc receives a fully re-encoded outgoing RTP frame. It is called
// on the event-loop thread, matching the thread-loop's to-loop delivery
// contract.
type OutputFunc func(frame *rtpframe.Frame)

// SessionStats holds frame/byte counters for a session. Snapshots are
// captured atomically at the time of the call.
type SessionStats struct {
	FramesIn      uint64
	FramesOut     uint64
	BytesIn       uint64
	BytesOut      uint64
	FramesDropped uint64
}

// Session decodes incoming RTP audio with one codec and re-encodes it
// with another, dispatching both directions through a thread-loop: decode
// and encode happen on a worker goroutine, delivery to Output happens on
// the event-loop thread.
type Session struct {
	ID     string
	ssid   uint32
	decode codec.Codec
	encode codec.Codec
	output OutputFunc
	logger *slog.Logger
	tl     *threadloop.ThreadLoop

	seq       atomic.Uint32
	timestamp atomic.Uint32

	framesIn      atomic.Uint64
	framesOut     atomic.Uint64
	bytesIn       atomic.Uint64
	bytesOut      atomic.Uint64
	framesDropped atomic.Uint64
}

// NewSession builds a Session bound to loop, selecting its decode and
// encode codecs from factory via their JSON descriptors (spec.md §4.8's
// factory-from-JSON contract). output is invoked for each re-encoded
// outgoing frame; it may be nil to discard output.
func NewSession(loop *eventloop.Loop, tlCfg threadloop.Config, factory *codecfactory.Factory, ssid uint32, decodeParams, encodeParams *value.Value, output OutputFunc, logger *slog.Logger) (*Session, error) {
	decode, err := factory.CreateFromJSON(ssid, decodeParams)
	if err != nil {
		return nil, fmt.Errorf("media: build decode codec: %w", err)
	}
	encode, err := factory.CreateFromJSON(ssid, encodeParams)
	if err != nil {
		return nil, fmt.Errorf("media: build encode codec: %w", err)
	}

	s := &Session{
		ID:     uuid.NewString(),
		ssid:   ssid,
		decode: decode,
		encode: encode,
		output: output,
	}
	s.logger = logger.With("subsystem", "media-session", "session_id", s.ID)

	tl, err := threadloop.New(loop, tlCfg, s.handleInThread, s.handleInLoop)
	if err != nil {
		return nil, fmt.Errorf("media: build thread-loop: %w", err)
	}
	s.tl = tl

	s.logger.Info("media session created",
		"codec_in", decode.TypeID(),
		"codec_out", encode.TypeID(),
	)
	return s, nil
}

// Ingest hands a raw RTP packet to the session for decoding. The packet is
// parsed, wrapped as an rtpframe-backed thread-message, and dispatched to
// a worker thread; Ingest returns immediately without waiting for the
// decode/encode/output pipeline to run.
func (s *Session) Ingest(raw []byte) bool {
	frame, ok := rtpframe.ParseFrame(raw)
	if !ok {
		s.framesDropped.Add(1)
		return false
	}
	msg := rtpframe.New(frame)
	if !s.tl.Send(msg.Message, threadloop.ToThread) {
		s.framesDropped.Add(1)
		return false
	}
	return true
}

// handleInThread runs on a worker goroutine: decode the incoming payload
// with decode, re-encode the result with encode, and hand the outgoing
// frame back to the event-loop thread.
func (s *Session) handleInThread(tl *threadloop.ThreadLoop, tm *threadmsg.Message) bool {
	defer tm.Free()

	in := rtpframe.Cast(tm)
	if in == nil || in.Frame == nil {
		s.framesDropped.Add(1)
		return false
	}
	frame := in.Frame
	payload := frame.Raw[12:]

	samples, err := s.decode.Decode(uint32(frame.Sequence), payload)
	if err != nil {
		s.logger.Warn("decode failed", "error", err)
		s.framesDropped.Add(1)
		return false
	}

	encoded, err := s.encode.Encode(samples)
	if err != nil {
		s.logger.Warn("encode failed", "error", err)
		s.framesDropped.Add(1)
		return false
	}

	s.framesIn.Add(1)
	s.bytesIn.Add(uint64(len(payload)))

	out := s.buildOutgoingFrame(frame.PayloadType, encoded)
	outMsg := rtpframe.New(out)
	if !tl.Send(outMsg.Message, threadloop.ToEventLoop) {
		s.framesDropped.Add(1)
		return false
	}
	return true
}

// handleInLoop runs on the event-loop thread: deliver the re-encoded
// frame to the caller-supplied output function.
func (s *Session) handleInLoop(tl *threadloop.ThreadLoop, tm *threadmsg.Message) bool {
	defer tm.Free()

	out := rtpframe.Cast(tm)
	if out == nil || out.Frame == nil {
		return false
	}

	s.framesOut.Add(1)
	s.bytesOut.Add(uint64(len(out.Frame.Raw) - 12))

	if s.output != nil {
		s.output(out.Frame)
	}
	return true
}

// buildOutgoingFrame assembles a new RTP packet around payload, preferring
// the encode codec's own static RTP payload type and falling back to the
// incoming frame's payload type for dynamically-typed codecs (Opus,
// PCM16, raw).
func (s *Session) buildOutgoingFrame(fallbackPT uint8, payload []byte) *rtpframe.Frame {
	pt := fallbackPT
	if p, ok := s.encode.RTPPayloadType(); ok {
		pt = uint8(p)
	}

	seq := uint16(s.seq.Add(1))
	ts := s.timestamp.Add(uint32(len(payload)))

	raw := make([]byte, 12+len(payload))
	raw[0] = 0x80
	raw[1] = pt & 0x7f
	raw[2] = byte(seq >> 8)
	raw[3] = byte(seq)
	raw[4] = byte(ts >> 24)
	raw[5] = byte(ts >> 16)
	raw[6] = byte(ts >> 8)
	raw[7] = byte(ts)
	copy(raw[12:], payload)

	return &rtpframe.Frame{
		Raw:         raw,
		PayloadType: pt,
		Sequence:    seq,
		Timestamp:   ts,
	}
}

// Stats returns a snapshot of the session's frame/byte counters.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		FramesIn:      s.framesIn.Load(),
		FramesOut:     s.framesOut.Load(),
		BytesIn:       s.bytesIn.Load(),
		BytesOut:      s.bytesOut.Load(),
		FramesDropped: s.framesDropped.Load(),
	}
}

// Close stops the session's worker pool and releases its thread-loop
// resources. The caller must stop calling Ingest first.
func (s *Session) Close() error {
	s.tl.StopThreads()
	return s.tl.Free()
}
