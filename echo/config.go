package echo

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/lixenwraith/dark-platforms/parameter"
)

// Channel selects which playback channels an echo uses
type Channel uint8

const (
	// ChannelSpatial plays at the hit point with distance rolloff
	ChannelSpatial Channel = 1 << iota
	// ChannelFallback plays flat at reduced volume so the echo survives
	// when spatial rendering is unavailable or culls the source
	ChannelFallback

	ChannelBoth = ChannelSpatial | ChannelFallback
)

// Has reports whether c includes ch
func (c Channel) Has(ch Channel) bool {
	return c&ch != 0
}

// String implements fmt.Stringer
func (c Channel) String() string {
	switch c {
	case ChannelSpatial:
		return "spatial"
	case ChannelFallback:
		return "fallback"
	case ChannelBoth:
		return "both"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// ErrInvalidConfig is returned when a responder config violates its ranges
var ErrInvalidConfig = errors.New("invalid echo responder configuration")

// Config tunes one responder
type Config struct {
	VolumeFalloffRate float64 `toml:"volume_falloff_rate" yaml:"volume_falloff_rate" default:"0.03"`
	PitchHeightFactor float64 `toml:"pitch_height_factor" yaml:"pitch_height_factor" default:"0.2"`
	Channels          Channel `toml:"channels" yaml:"channels" default:"3"`
	// MaxConcurrent caps live playback tasks, 0 is unbounded
	MaxConcurrent int     `toml:"max_concurrent" yaml:"max_concurrent"`
	MinDistance   float64 `toml:"min_distance" yaml:"min_distance" default:"0.1"`
	MaxDistance   float64 `toml:"max_distance" yaml:"max_distance" default:"30"`
}

// DefaultConfig returns the reference tuning
func DefaultConfig() Config {
	return Config{
		VolumeFalloffRate: parameter.EchoDefaultFalloff,
		PitchHeightFactor: parameter.EchoDefaultPitchHeight,
		Channels:          ChannelBoth,
		MaxConcurrent:     parameter.EchoDefaultMaxConcurrent,
		MinDistance:       parameter.SpatialMinDistance,
		MaxDistance:       parameter.SpatialMaxDistance,
	}
}

// Validate reports every range violation
func (c Config) Validate() error {
	var errs error
	if c.VolumeFalloffRate < parameter.EchoFalloffMin || c.VolumeFalloffRate > parameter.EchoFalloffMax {
		errs = multierr.Append(errs, fmt.Errorf("%w: volume falloff %v outside [%v, %v]",
			ErrInvalidConfig, c.VolumeFalloffRate, parameter.EchoFalloffMin, parameter.EchoFalloffMax))
	}
	if c.Channels == 0 || c.Channels&^ChannelBoth != 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: channels %v", ErrInvalidConfig, c.Channels))
	}
	if c.MaxConcurrent < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: max concurrent %d is negative", ErrInvalidConfig, c.MaxConcurrent))
	}
	if c.MinDistance < 0 || c.MaxDistance <= c.MinDistance {
		errs = multierr.Append(errs, fmt.Errorf("%w: rolloff range [%v, %v]", ErrInvalidConfig, c.MinDistance, c.MaxDistance))
	}
	return errs
}
