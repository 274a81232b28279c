// Package raw implements the trivial no-op passthrough codec (spec.md
// §4.9's "raw"): samples cross the codec boundary byte-identical, with no
// companding and no endianness tagging, unlike pcm16's wire-endianness
// variant.
package raw

import (
	"encoding/binary"
	"fmt"

	"github.com/flowpbx/ovcore/internal/codec"
	"github.com/flowpbx/ovcore/internal/ovcerr"
	"github.com/flowpbx/ovcore/internal/value"
)

// TypeID is the registry name this codec is installed under.
const TypeID = "raw"

// Codec is the identity codec: native-endian bytes, no parameters.
type Codec struct{}

// New constructs a Codec.
func New() *Codec { return &Codec{} }

// FromParameters ignores parameters - raw has none.
func FromParameters(parameters *value.Value) *Codec { return New() }

func (c *Codec) TypeID() string { return TypeID }

func (c *Codec) SampleRateHertz() int { return codec.InternalRateHertz }

func (c *Codec) RTPPayloadType() (int, bool) { return 0, false }

func (c *Codec) GetParameters() *value.Value { return value.NewObject() }

// Encode writes samples as native-endian bytes with no companding.
func (c *Codec) Encode(samples []int16) ([]byte, error) {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.NativeEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out, nil
}

// Decode reads native-endian bytes back to samples.
func (c *Codec) Decode(seq uint32, payload []byte) ([]int16, error) {
	_ = seq
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("raw: payload length %d not a multiple of 2: %w", len(payload), ovcerr.ErrInvalidArgument)
	}
	out := make([]int16, len(payload)/2)
	for i := range out {
		out[i] = int16(binary.NativeEndian.Uint16(payload[2*i:]))
	}
	return out, nil
}
