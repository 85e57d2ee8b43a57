package core

import (
	"gonum.org/v1/gonum/spatial/r3"
)

//go:generate go tool mockgen -destination=../mocks/echo_capable_mock.go -package=mocks . EchoCapable

// EchoCapable is implemented by world surfaces that answer a sonar ping
// Resolved by the spatial query at hit time, never looked up by the emitter
type EchoCapable interface {
	// TriggerEcho schedules a delayed echo for a single ray hit
	// delay is the round-trip time in seconds, listener is captured at ping time
	TriggerEcho(delay float64, listener, hitPoint, hitNormal r3.Vec) error
}

// EchoRequest is one qualifying ray hit, handed from emitter to responder
// Not retained by either side after the trigger call
type EchoRequest struct {
	Delay     float64
	Listener  r3.Vec
	HitPoint  r3.Vec
	HitNormal r3.Vec
}

// Dispatch forwards the request to a responder
func (r EchoRequest) Dispatch(target EchoCapable) error {
	return target.TriggerEcho(r.Delay, r.Listener, r.HitPoint, r.HitNormal)
}

// RoundTripDelay returns the time for sound to travel distance and back
func RoundTripDelay(distance, speedOfSound float64) float64 {
	return 2 * distance / speedOfSound
}
