// Package pcm16 implements the endianness-tagged PCM16 passthrough codec
// (C11): samples pass straight through, swapped pairwise only when the
// requested endianness differs from native.
package pcm16

import (
	"encoding/binary"
	"fmt"

	"github.com/flowpbx/ovcore/internal/codec"
	"github.com/flowpbx/ovcore/internal/ovcerr"
	"github.com/flowpbx/ovcore/internal/value"
)

// TypeID is the registry name this codec is installed under.
const TypeID = "PCM16"

// Endianness selects the wire byte order. Default is Big.
type Endianness int

const (
	Big Endianness = iota
	Little
)

// Codec is a passthrough PCM16 codec parameterised by wire endianness.
type Codec struct {
	endian Endianness
}

// New constructs a Codec for the given endianness.
func New(endian Endianness) *Codec {
	return &Codec{endian: endian}
}

// FromParameters reads the "endianness" key ("big_endian"/"little_endian"),
// defaulting to Big when parameters is nil or the key is absent. A
// present-but-unrecognised value is rejected rather than silently
// defaulted, since that would otherwise decode a misspelled client value
// as the wrong endianness without any signal.
func FromParameters(parameters *value.Value) (*Codec, error) {
	if parameters == nil {
		return New(Big), nil
	}
	node := parameters.ObjectGet("endianness")
	if node == nil || !node.IsString() {
		return New(Big), nil
	}
	switch node.String() {
	case "big_endian":
		return New(Big), nil
	case "little_endian":
		return New(Little), nil
	default:
		return nil, fmt.Errorf("pcm16: unrecognised endianness %q: %w", node.String(), ovcerr.ErrInvalidArgument)
	}
}

func (c *Codec) TypeID() string { return TypeID }

// SampleRateHertz reports the internal rate: endianness-parameterised
// codecs are sample-rate-agnostic (spec.md §4.11).
func (c *Codec) SampleRateHertz() int { return codec.InternalRateHertz }

func (c *Codec) RTPPayloadType() (int, bool) { return 0, false }

func (c *Codec) GetParameters() *value.Value {
	params := value.NewObject()
	e := "big_endian"
	if c.endian == Little {
		e = "little_endian"
	}
	params.ObjectSet("endianness", value.NewString(e))
	return params
}

func (c *Codec) wireIsLittle() bool { return c.endian == Little }

// Encode writes samples as wire-endianness bytes, 2 bytes per sample.
func (c *Codec) Encode(samples []int16) ([]byte, error) {
	out := make([]byte, len(samples)*2)
	order := wireOrder(c.wireIsLittle())
	for i, s := range samples {
		order.PutUint16(out[2*i:], uint16(s))
	}
	return out, nil
}

// Decode reads wire-endianness bytes back to samples.
func (c *Codec) Decode(seq uint32, payload []byte) ([]int16, error) {
	_ = seq
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("pcm16: payload length %d not a multiple of 2: %w", len(payload), ovcerr.ErrInvalidArgument)
	}
	order := wireOrder(c.wireIsLittle())
	out := make([]int16, len(payload)/2)
	for i := range out {
		out[i] = int16(order.Uint16(payload[2*i:]))
	}
	return out, nil
}

func wireOrder(little bool) binary.ByteOrder {
	if little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
