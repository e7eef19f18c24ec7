// Package motion animates values between resting positions.
package motion

import (
	"math"
	"time"
)

const (
	// maxStep bounds a single integration step.
	maxStep = 4 * time.Millisecond

	settleDistance = 0.01
	settleVelocity = 0.1
)

// Spring moves a position toward a target like a damped spring. Response is
// the period of the undamped oscillation; damping is the damping ratio, with
// 1 meaning critically damped.
type Spring struct {
	response time.Duration
	damping  float64

	pos    float64
	vel    float64
	target float64

	animating bool
}

// NewSpring creates a spring resting at zero.
func NewSpring(response time.Duration, damping float64) *Spring {
	return &Spring{response: response, damping: damping}
}

// SetParams changes the response and damping. The current motion continues
// with the new values.
func (s *Spring) SetParams(response time.Duration, damping float64) {
	s.response = response
	s.damping = damping
}

// Position returns the current position.
func (s *Spring) Position() float64 {
	return s.pos
}

// Velocity returns the current velocity in units per second.
func (s *Spring) Velocity() float64 {
	return s.vel
}

// Target returns the resting position the spring moves toward.
func (s *Spring) Target() float64 {
	return s.target
}

// Animating returns true while the spring has not settled.
func (s *Spring) Animating() bool {
	return s.animating
}

// SetTarget starts moving toward x from the current position and velocity.
func (s *Spring) SetTarget(x float64) {
	s.target = x
	s.animating = s.pos != x || s.vel != 0
}

// Jump places the spring at x with no velocity and stops any animation.
func (s *Spring) Jump(x float64) {
	s.pos = x
	s.target = x
	s.vel = 0
	s.animating = false
}

// Stop freezes the spring at its current position.
func (s *Spring) Stop() {
	s.Jump(s.pos)
}

// Update advances the animation by dt and reports whether the position
// moved.
func (s *Spring) Update(dt time.Duration) bool {
	if !s.animating || dt <= 0 {
		return false
	}
	if s.response <= 0 {
		s.Jump(s.target)
		return true
	}

	omega := 2 * math.Pi / s.response.Seconds()
	stiffness := omega * omega
	friction := 2 * s.damping * omega

	start := s.pos
	for dt > 0 {
		step := min(dt, maxStep)
		dt -= step

		h := step.Seconds()
		accel := stiffness*(s.target-s.pos) - friction*s.vel
		s.vel += accel * h
		s.pos += s.vel * h
	}

	if math.Abs(s.target-s.pos) < settleDistance && math.Abs(s.vel) < settleVelocity {
		s.Jump(s.target)
	}
	return s.pos != start
}
