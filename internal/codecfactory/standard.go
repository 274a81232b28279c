package codecfactory

import (
	"github.com/flowpbx/ovcore/internal/codec"
	"github.com/flowpbx/ovcore/internal/codec/g711"
	"github.com/flowpbx/ovcore/internal/codec/opus"
	"github.com/flowpbx/ovcore/internal/codec/pcm16"
	"github.com/flowpbx/ovcore/internal/codec/raw"
	"github.com/flowpbx/ovcore/internal/value"
)

// Standard returns a Factory pre-registered with the four built-in
// codecs named in spec.md §4.9: raw, PCM16, Opus, and G.711. Each
// generator wraps its concrete codec at codec.InternalRateHertz via
// codec.Wrap so callers always deal in 48kHz samples regardless of the
// codec's native rate.
func Standard() *Factory {
	f := New()

	f.Install(raw.TypeID, func(ssid uint32, parameters *value.Value) (codec.Codec, error) {
		return codec.Wrap(raw.FromParameters(parameters)), nil
	})

	f.Install(pcm16.TypeID, func(ssid uint32, parameters *value.Value) (codec.Codec, error) {
		c, err := pcm16.FromParameters(parameters)
		if err != nil {
			return nil, err
		}
		return codec.Wrap(c), nil
	})

	f.Install(opus.TypeID, func(ssid uint32, parameters *value.Value) (codec.Codec, error) {
		c, err := opus.FromParameters(parameters)
		if err != nil {
			return nil, err
		}
		return codec.Wrap(c), nil
	})

	f.Install(g711.TypeID, func(ssid uint32, parameters *value.Value) (codec.Codec, error) {
		return codec.Wrap(g711.FromParameters(parameters)), nil
	})

	return f
}
