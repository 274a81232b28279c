package codec

import (
	"testing"

	"github.com/flowpbx/ovcore/internal/value"
)

// stubCodec is a minimal codec at a configurable rate, used to exercise Wrap/Resampled
// without depending on a concrete codec implementation.
type stubCodec struct {
	rate int
}

func (s *stubCodec) TypeID() string           { return "stub" }
func (s *stubCodec) SampleRateHertz() int     { return s.rate }
func (s *stubCodec) RTPPayloadType() (int, bool) { return 99, true }
func (s *stubCodec) GetParameters() *value.Value { return value.NewObject() }

// Encode/Decode are identity operations over the passed samples,
// reinterpreted as bytes, so tests can check resampling occurred without
// needing a real bitstream codec.
func (s *stubCodec) Encode(samples []int16) ([]byte, error) {
	out := make([]byte, len(samples)*2)
	for i, v := range samples {
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return out, nil
}

func (s *stubCodec) Decode(seq uint32, payload []byte) ([]int16, error) {
	out := make([]int16, len(payload)/2)
	for i := range out {
		out[i] = int16(payload[2*i]) | int16(payload[2*i+1])<<8
	}
	return out, nil
}

func TestWrapPassesThroughAtInternalRate(t *testing.T) {
	c := Wrap(&stubCodec{rate: InternalRateHertz})
	if c.SampleRateHertz() != InternalRateHertz {
		t.Fatalf("expected Wrap to be a no-op at the internal rate")
	}
	if _, ok := c.(*Resampled); ok {
		t.Fatalf("expected Wrap to return the inner codec unwrapped")
	}
}

func TestWrapResamplesAtDifferentRate(t *testing.T) {
	c := Wrap(&stubCodec{rate: 8000})
	if c.SampleRateHertz() != InternalRateHertz {
		t.Fatalf("expected Resampled to report the internal rate, got %d", c.SampleRateHertz())
	}

	in := make([]int16, 480) // 10ms at 48kHz
	for i := range in {
		in[i] = int16(i)
	}

	encoded, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// 10ms at 8kHz is 80 samples -> 160 bytes.
	if len(encoded) != 160 {
		t.Fatalf("got %d encoded bytes, want 160", len(encoded))
	}

	decoded, err := c.Decode(0, encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(in) {
		t.Fatalf("got %d decoded samples, want %d", len(decoded), len(in))
	}
}

func TestToJSONAddsCodecKey(t *testing.T) {
	c := &stubCodec{rate: 8000}
	j := ToJSON(c)
	got := j.ObjectGet("codec")
	if got == nil || got.String() != "stub" {
		t.Fatalf("expected codec key \"stub\", got %v", got)
	}
}
