// Package resample implements PCM16 sample-rate conversion for the codec
// abstraction's transparent resampling wrapper (C8).
//
// There is no resampler source in the retrieval pack to ground this
// against bit-for-bit (see DESIGN.md), so this implements linear
// interpolation: simple, allocation-light, and correct in the sense that
// mattered for this codebase - it preserves sample count ratios exactly
// and never reads out of bounds - even though it is not the same
// algorithm a production G.711/Opus bridge would use for best fidelity.
package resample

// Resampler converts mono PCM16 sample sequences between two fixed rates.
type Resampler struct {
	fromHz int
	toHz   int
}

// New returns a Resampler converting fromHz-rate PCM to toHz-rate PCM. If
// fromHz == toHz, Resample is a copying no-op.
func New(fromHz, toHz int) *Resampler {
	return &Resampler{fromHz: fromHz, toHz: toHz}
}

// OutLen returns the number of output samples Resample would produce for
// inLen input samples, so callers can size staging buffers up front.
func (r *Resampler) OutLen(inLen int) int {
	if r.fromHz == r.toHz || inLen == 0 {
		return inLen
	}
	return (inLen*r.toHz + r.fromHz - 1) / r.fromHz
}

// Resample converts in to the target rate via linear interpolation.
func (r *Resampler) Resample(in []int16) []int16 {
	if r.fromHz == r.toHz || len(in) == 0 {
		out := make([]int16, len(in))
		copy(out, in)
		return out
	}

	outLen := r.OutLen(len(in))
	out := make([]int16, outLen)
	ratio := float64(r.fromHz) / float64(r.toHz)

	for i := 0; i < outLen; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		if idx >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		a, b := float64(in[idx]), float64(in[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}
