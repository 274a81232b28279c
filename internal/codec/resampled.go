package codec

import (
	"fmt"

	"github.com/flowpbx/ovcore/internal/ovcerr"
	"github.com/flowpbx/ovcore/internal/resample"
	"github.com/flowpbx/ovcore/internal/value"
)

// MaxFrameSamples bounds a single encode/decode call's staging buffer,
// standing in for "the platform's max frame samples" (spec.md §4.8). 20ms
// of audio at 48kHz.
const MaxFrameSamples = 960

// Resampled wraps a codec whose native rate differs from InternalRateHertz,
// transparently resampling PCM across the boundary so callers always deal
// in 48 kHz samples.
type Resampled struct {
	inner Codec

	toCodecRate    *resample.Resampler // encode direction: 48kHz -> inner rate
	toInternalRate *resample.Resampler // decode direction: inner rate -> 48kHz

	staging []int16
}

// Wrap returns inner unchanged if its native rate is already
// InternalRateHertz; otherwise it's wrapped in a *Resampled.
func Wrap(inner Codec) Codec {
	rate := inner.SampleRateHertz()
	if rate == InternalRateHertz {
		return inner
	}

	stagingSize := MaxFrameSamples
	if out := (resample.New(InternalRateHertz, rate)).OutLen(MaxFrameSamples); out > stagingSize {
		stagingSize = out
	}

	return &Resampled{
		inner:          inner,
		toCodecRate:    resample.New(InternalRateHertz, rate),
		toInternalRate: resample.New(rate, InternalRateHertz),
		staging:        make([]int16, stagingSize),
	}
}

func (r *Resampled) TypeID() string { return r.inner.TypeID() }

func (r *Resampled) SampleRateHertz() int { return InternalRateHertz }

func (r *Resampled) RTPPayloadType() (int, bool) { return r.inner.RTPPayloadType() }

func (r *Resampled) GetParameters() *value.Value { return r.inner.GetParameters() }

// Encode resamples 48kHz PCM down to the inner codec's rate, then encodes.
func (r *Resampled) Encode(samples []int16) ([]byte, error) {
	if len(samples) > cap(r.staging) {
		return nil, fmt.Errorf("codec: input exceeds max frame samples: %w", ovcerr.ErrInvalidArgument)
	}
	down := r.toCodecRate.Resample(samples)
	return r.inner.Encode(down)
}

// Decode decodes to the inner codec's native rate, then resamples up to
// 48kHz.
func (r *Resampled) Decode(seq uint32, payload []byte) ([]int16, error) {
	pcm, err := r.inner.Decode(seq, payload)
	if err != nil {
		return nil, err
	}
	return r.toInternalRate.Resample(pcm), nil
}
