// Package codec defines the polymorphic audio-codec abstraction (C8): a
// common interface every concrete codec (G.711, PCM16, Opus) implements,
// plus a transparent resampling wrapper that lets every codec operate at
// its native rate while the rest of the system only ever sees 48 kHz PCM.
package codec

import (
	"github.com/flowpbx/ovcore/internal/value"
)

// InternalRateHertz is the fixed internal PCM rate every codec's audio is
// resampled to/from when its native rate differs (spec.md §4.8).
const InternalRateHertz = 48000

// Codec encodes 48 kHz-domain PCM samples to wire bytes and back. A
// concrete codec reports its own native sample rate; Resampled wraps one
// transparently when that rate isn't 48 kHz.
type Codec interface {
	// TypeID is the codec's registry name (e.g. "PCM16", "Opus", "G.711").
	TypeID() string

	// SampleRateHertz is the codec's native operating rate.
	SampleRateHertz() int

	// RTPPayloadType returns the codec's static RTP payload type, if it
	// has one (dynamic payload types are negotiated out of band and are
	// not this package's concern).
	RTPPayloadType() (pt int, ok bool)

	// Encode converts PCM samples (at the codec's native rate) to
	// wire-format bytes.
	Encode(samples []int16) ([]byte, error)

	// Decode converts wire-format bytes back to PCM samples. seq is the
	// RTP sequence number, passed through for codecs that track packet
	// loss across calls.
	Decode(seq uint32, payload []byte) ([]int16, error)

	// GetParameters returns a fresh JSON object describing this codec's
	// construction parameters (spec.md §4.8's parameter round-trip).
	GetParameters() *value.Value
}

// ToJSON returns c.GetParameters() with the "codec" key set to c.TypeID().
func ToJSON(c Codec) *value.Value {
	params := c.GetParameters()
	if params == nil {
		params = value.NewObject()
	}
	params.ObjectSet("codec", value.NewString(c.TypeID()))
	return params
}
