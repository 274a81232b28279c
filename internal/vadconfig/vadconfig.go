// Package vadconfig decodes the JSON config contract for the voice
// activity detector (C13): a narrow interface the detector consumes but
// that this library does not itself implement, per spec.md §1's
// "VAD/crypto helper configs" external-collaborator boundary. The
// zero-crossings and power-level fields come from
// original_source/ov_vad_config.h; peak_valid_threshold_percent and the
// flat, un-nested key layout are this package's own (see DESIGN.md Open
// Question 6).
package vadconfig

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/flowpbx/ovcore/internal/value"
)

// Defaults match ov_vad_config.h's compiled-in constants.
const (
	DefaultZeroCrossingsRateThresholdHertz = 200
	DefaultPowerlevelDensityThresholdDB    = -40
	DefaultPeakValidThresholdPercent       = 80
)

// Config is the recognised VAD tuning surface. Missing keys take the
// package defaults; unknown keys are ignored.
type Config struct {
	ZeroCrossingsRateThresholdHertz int `mapstructure:"zero_crossings_rate_threshold_hertz"`
	PowerlevelDensityThresholdDB    int `mapstructure:"powerlevel_density_threshold_db"`
	PeakValidThresholdPercent       int `mapstructure:"peak_valid_threshold_percent"`
}

// Default returns a Config populated with the compiled-in defaults.
func Default() Config {
	return Config{
		ZeroCrossingsRateThresholdHertz: DefaultZeroCrossingsRateThresholdHertz,
		PowerlevelDensityThresholdDB:    DefaultPowerlevelDensityThresholdDB,
		PeakValidThresholdPercent:       DefaultPeakValidThresholdPercent,
	}
}

// Decode converts a parsed JSON value into a Config, starting from
// Default() so that any key absent from node keeps its default.
func Decode(node *value.Value) (Config, error) {
	cfg := Default()
	if node == nil {
		return cfg, nil
	}

	generic, err := value.ToGeneric(node)
	if err != nil {
		return Config{}, fmt.Errorf("vadconfig: convert to generic map: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("vadconfig: build decoder: %w", err)
	}
	if err := decoder.Decode(generic); err != nil {
		return Config{}, fmt.Errorf("vadconfig: decode: %w", err)
	}
	return cfg, nil
}
