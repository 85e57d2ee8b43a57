package sonar

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/parameter"
	"github.com/lixenwraith/dark-platforms/vmath"
)

// ErrInvalidConfiguration is returned for scan settings that would produce degenerate geometry
var ErrInvalidConfiguration = errors.New("invalid sonar scan configuration")

// Plane selects the axis the fan sweeps around
type Plane uint8

const (
	// PlaneHorizontal sweeps +X about +Z, the game's side-view plane
	PlaneHorizontal Plane = iota
	// PlaneVertical sweeps +Z about +X
	PlaneVertical
)

// String implements fmt.Stringer
func (p Plane) String() string {
	switch p {
	case PlaneHorizontal:
		return "horizontal"
	case PlaneVertical:
		return "vertical"
	default:
		return fmt.Sprintf("plane(%d)", uint8(p))
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Plane) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for config files
func (p *Plane) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "horizontal":
		*p = PlaneHorizontal
	case "vertical":
		*p = PlaneVertical
	default:
		return fmt.Errorf("%w: unknown scan plane %q", ErrInvalidConfiguration, text)
	}
	return nil
}

// axes returns the reference direction and rotation axis of the plane
func (p Plane) axes() (ref, axis r3.Vec) {
	if p == PlaneVertical {
		return vmath.AxisZ, vmath.AxisX
	}
	return vmath.AxisX, vmath.AxisZ
}

// ScanConfig shapes one ping
type ScanConfig struct {
	RayCount        int     `toml:"ray_count" yaml:"ray_count" default:"72"`
	FanAngleDegrees float64 `toml:"fan_angle" yaml:"fan_angle" default:"360"`
	MaxRange        float64 `toml:"max_range" yaml:"max_range" default:"15"`
	SpeedOfSound    float64 `toml:"speed_of_sound" yaml:"speed_of_sound" default:"343"`
	Plane           Plane   `toml:"plane" yaml:"plane"`
}

// DefaultScanConfig returns the full-circle scan used by the player
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		RayCount:        parameter.SonarDefaultRayCount,
		FanAngleDegrees: parameter.SonarDefaultFanAngle,
		MaxRange:        parameter.SonarDefaultMaxRange,
		SpeedOfSound:    parameter.SonarDefaultSpeedOfSound,
		Plane:           PlaneHorizontal,
	}
}

// Validate reports every violation; the angle step divides by RayCount-1
func (c ScanConfig) Validate() error {
	var errs error
	if c.RayCount < parameter.SonarMinRayCount {
		errs = multierr.Append(errs, fmt.Errorf("%w: ray count %d below %d",
			ErrInvalidConfiguration, c.RayCount, parameter.SonarMinRayCount))
	}
	if !(c.FanAngleDegrees > 0 && c.FanAngleDegrees <= parameter.SonarMaxFanAngle) {
		errs = multierr.Append(errs, fmt.Errorf("%w: fan angle %v outside (0, %v]",
			ErrInvalidConfiguration, c.FanAngleDegrees, parameter.SonarMaxFanAngle))
	}
	if !(c.MaxRange > 0) {
		errs = multierr.Append(errs, fmt.Errorf("%w: max range %v", ErrInvalidConfiguration, c.MaxRange))
	}
	if !(c.SpeedOfSound > 0) {
		errs = multierr.Append(errs, fmt.Errorf("%w: speed of sound %v", ErrInvalidConfiguration, c.SpeedOfSound))
	}
	if c.Plane != PlaneHorizontal && c.Plane != PlaneVertical {
		errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrInvalidConfiguration, c.Plane))
	}
	return errs
}

// Angles returns the in-plane angle of every ray in degrees
func (c ScanConfig) Angles() []float64 {
	return vmath.FanAngles(c.RayCount, c.FanAngleDegrees)
}

// directions builds the fan in emitter-local space
func (c ScanConfig) directions() []r3.Vec {
	ref, axis := c.Plane.axes()
	return vmath.FanDirections(c.Angles(), ref, axis, vmath.Identity())
}
