// Package opus wraps an external Opus implementation (C12) behind the
// codec.Codec interface, via gopkg.in/hraban/opus.v2 (a cgo binding to
// libopus).
package opus

import (
	"fmt"
	"math"

	hraban "gopkg.in/hraban/opus.v2"

	"github.com/flowpbx/ovcore/internal/ovcerr"
	"github.com/flowpbx/ovcore/internal/value"
)

// TypeID is the registry name this codec is installed under.
const TypeID = "Opus"

const defaultSampleRateHertz = 48000
const channels = 1

// Codec wraps one encoder and one decoder instance for a fixed sample
// rate.
type Codec struct {
	sampleRate int
	enc        *hraban.Encoder
	dec        *hraban.Decoder
}

// New constructs a Codec at sampleRateHertz. Construction fails if the
// rate is out of int32 range or libopus rejects it (spec.md §4.12).
func New(sampleRateHertz int) (*Codec, error) {
	if sampleRateHertz <= 0 || sampleRateHertz > math.MaxInt32 {
		return nil, fmt.Errorf("opus: sample rate %d out of int32 range: %w", sampleRateHertz, ovcerr.ErrInvalidArgument)
	}

	enc, err := hraban.NewEncoder(sampleRateHertz, channels, hraban.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("opus: create encoder: %w", err)
	}
	dec, err := hraban.NewDecoder(sampleRateHertz, channels)
	if err != nil {
		return nil, fmt.Errorf("opus: create decoder: %w", err)
	}

	return &Codec{sampleRate: sampleRateHertz, enc: enc, dec: dec}, nil
}

// FromParameters reads "sample_rate_hertz" from parameters, defaulting to
// 48000 when parameters is nil or the key is absent.
func FromParameters(parameters *value.Value) (*Codec, error) {
	rate := defaultSampleRateHertz
	if parameters != nil {
		if node := parameters.ObjectGet("sample_rate_hertz"); node != nil && node.IsNumber() {
			rate = int(node.Number())
		}
	}
	return New(rate)
}

func (c *Codec) TypeID() string { return TypeID }

func (c *Codec) SampleRateHertz() int { return c.sampleRate }

func (c *Codec) RTPPayloadType() (int, bool) { return 0, false }

func (c *Codec) GetParameters() *value.Value {
	params := value.NewObject()
	params.ObjectSet("sample_rate_hertz", value.NewNumber(float64(c.sampleRate)))
	return params
}

const maxFrameSamples = 5760 // 120ms at 48kHz, libopus's own cap

// Encode rejects input lengths that are not a multiple of 2 bytes - here
// samples are already []int16, so the analogous check is a non-empty
// frame within libopus's bounds.
func (c *Codec) Encode(samples []int16) ([]byte, error) {
	if len(samples) == 0 || len(samples) > maxFrameSamples {
		return nil, fmt.Errorf("opus: invalid frame length %d: %w", len(samples), ovcerr.ErrInvalidArgument)
	}
	out := make([]byte, len(samples)*2)
	n, err := c.enc.Encode(samples, out)
	if err != nil {
		return nil, fmt.Errorf("opus: encode: %w", err)
	}
	return out[:n], nil
}

// Decode decodes one packet into at most maxFrameSamples samples. The
// output is []int16, so there is no byte-capacity check.
func (c *Codec) Decode(seq uint32, payload []byte) ([]int16, error) {
	_ = seq
	out := make([]int16, maxFrameSamples)
	n, err := c.dec.Decode(payload, out)
	if err != nil {
		return nil, fmt.Errorf("opus: decode: %w", err)
	}
	return out[:n], nil
}

// DecodePacketLoss runs a concealment decode for a detected gap in the
// sequence, per spec.md §4.12's optional packet-loss handling.
func (c *Codec) DecodePacketLoss() ([]int16, error) {
	out := make([]int16, maxFrameSamples)
	n, err := c.dec.DecodePLC(out)
	if err != nil {
		return nil, fmt.Errorf("opus: decode plc: %w", err)
	}
	return out[:n], nil
}
