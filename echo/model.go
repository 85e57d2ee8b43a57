package echo

import (
	"math"

	"github.com/lixenwraith/dark-platforms/parameter"
	"github.com/lixenwraith/dark-platforms/vmath"
)

// Volume returns the echo gain for a surface at distance from the listener
// Falls linearly with distance and never drops below the floor
func Volume(distance, falloff float64) float64 {
	return math.Max(vmath.Clamp01(1-distance*falloff), parameter.EchoVolumeFloor)
}

// Pitch returns the playback rate for a surface heightDiff above the listener
// Higher surfaces sound higher
func Pitch(heightDiff, factor float64) float64 {
	return vmath.Clamp(1+heightDiff*factor, parameter.EchoPitchMin, parameter.EchoPitchMax)
}
