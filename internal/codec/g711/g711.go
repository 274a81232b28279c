// Package g711 implements the G.711 A-law and mu-law codecs (C10),
// transcribed from the original bit-manipulation routines: even-bit
// inversion for A-law, all-bit inversion for mu-law.
package g711

import (
	"fmt"

	"github.com/flowpbx/ovcore/internal/ovcerr"
	"github.com/flowpbx/ovcore/internal/value"
)

// Law selects which companding table a Codec uses.
type Law int

const (
	ULaw Law = iota
	ALaw
)

// TypeID is the registry name this codec is installed under.
const TypeID = "G.711"

// sampleRateHertz is fixed by the standard and never resampled away even
// if other parameters request a different rate.
const sampleRateHertz = 8000

const (
	rtpPayloadTypeULaw = 0
	rtpPayloadTypeALaw = 8
)

// Codec implements codec.Codec for one of the two G.711 companding laws.
type Codec struct {
	law Law
}

// New constructs a Codec for the given law.
func New(law Law) *Codec {
	return &Codec{law: law}
}

// FromParameters reads the "law" key ("alaw"/"ulaw") from parameters,
// defaulting to mu-law when parameters is nil or the key is absent or
// unrecognised - matching the original factory's lenient fallback.
func FromParameters(parameters *value.Value) *Codec {
	if parameters == nil {
		return New(ULaw)
	}
	lawNode := parameters.ObjectGet("law")
	if lawNode == nil || !lawNode.IsString() {
		return New(ULaw)
	}
	switch lawNode.String() {
	case "alaw":
		return New(ALaw)
	case "ulaw":
		return New(ULaw)
	default:
		return New(ULaw)
	}
}

func (c *Codec) TypeID() string { return TypeID }

func (c *Codec) SampleRateHertz() int { return sampleRateHertz }

func (c *Codec) RTPPayloadType() (int, bool) {
	if c.law == ALaw {
		return rtpPayloadTypeALaw, true
	}
	return rtpPayloadTypeULaw, true
}

func (c *Codec) GetParameters() *value.Value {
	params := value.NewObject()
	law := "ulaw"
	if c.law == ALaw {
		law = "alaw"
	}
	params.ObjectSet("law", value.NewString(law))
	return params
}

// Encode compresses 16-bit PCM samples, one byte per sample.
func (c *Codec) Encode(samples []int16) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("g711: empty input: %w", ovcerr.ErrInvalidArgument)
	}
	out := make([]byte, len(samples))
	compress := ulawCompress
	if c.law == ALaw {
		compress = alawCompress
	}
	for i, s := range samples {
		out[i] = compress(s)
	}
	return out, nil
}

// Decode expands one byte per sample back to 16-bit PCM.
func (c *Codec) Decode(seq uint32, payload []byte) ([]int16, error) {
	_ = seq
	if len(payload) == 0 {
		return nil, fmt.Errorf("g711: empty payload: %w", ovcerr.ErrInvalidArgument)
	}
	out := make([]int16, len(payload))
	expand := ulawExpand
	if c.law == ALaw {
		expand = alawExpand
	}
	for i, b := range payload {
		out[i] = expand(b)
	}
	return out, nil
}

const (
	highOrderBit  = uint8(0x80)
	evenBits      = uint8(0x01 | 0x04 | 0x10 | 0x40)
	mantissaMask  = uint8(0x0f)
	exponentMask  = uint8(0x70)
)

func invertEvenBits(x uint8) uint8 { return x ^ evenBits }

// alawExpand decodes one A-law byte to a 16-bit PCM sample.
func alawExpand(x uint8) int16 {
	sign := int32(1)
	if x&highOrderBit != highOrderBit {
		sign = -1
	}

	intermediate := invertEvenBits(x)
	mantissa := uint32(intermediate & mantissaMask)
	exponent := uint32(intermediate&exponentMask) >> 4

	if exponent > 0 {
		mantissa += 0x10
	}
	if exponent == 0 {
		exponent = 1
	}

	resultAbs := mantissa << exponent
	resultAbs += 1 << (exponent - 1)

	return int16(sign * int32(resultAbs))
}

// alawCompress encodes a 16-bit PCM sample to one A-law byte.
func alawCompress(x int16) uint8 {
	v := int32(x)
	if v > 4032 {
		return invertEvenBits(0xff)
	}
	if v < -4032 {
		return invertEvenBits(0x7f)
	}

	sign := int32(1)
	if v < 0 {
		v = -v
		sign = -1
	}

	abs := uint32(v)
	exp := alawExponent(abs)
	shift := exp
	if exp == 0 {
		shift = 1
	}

	abs = abs >> shift
	abs &= 0x0f

	compressed := uint8(abs)
	compressed |= exp << 4
	if sign > 0 {
		compressed |= highOrderBit
	}

	return invertEvenBits(compressed)
}

func alawExponent(x uint32) uint8 {
	x &= 0x7fff
	x = x >> 5

	var exp uint8
	for x > 0 {
		exp++
		x = x >> 1
	}
	return exp
}

// ulawExpand decodes one mu-law byte to a 16-bit PCM sample.
func ulawExpand(raw uint8) int16 {
	x := raw ^ 0xff

	sign := int32(1)
	if x&highOrderBit == highOrderBit {
		sign = -1
	}

	exponent := uint32(x&exponentMask) >> 4
	mantissa := uint32(x & mantissaMask)
	mantissa = mantissa<<1 | 0x21
	mantissa = mantissa << exponent

	result := int32(mantissa) - 0x21
	return int16(sign * result)
}

// ulawCompress encodes a 16-bit PCM sample to one mu-law byte.
func ulawCompress(x int16) uint8 {
	v := int32(x)
	if v > 8158 {
		return 0x80
	}
	if v < -8158 {
		return 0x00
	}

	sign := int32(1)
	if v < 0 {
		sign = -1
		v = -v
	}

	u := uint32(v)
	u += 0x21

	var exp uint8
	for u >= 0x40 {
		exp++
		u = u >> 1
	}

	u = u >> 1
	u &= 0x0f

	result := uint8(u) | (exp << 4)
	if sign < 0 {
		result |= highOrderBit
	}

	return result ^ 0xff
}
