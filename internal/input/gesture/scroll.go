package gesture

import (
	"github.com/dshills/swipepane/internal/pager"
)

// ScrollEvent is a horizontal scroll event as reported by a trackpad.
type ScrollEvent struct {
	// DeltaX is the precise horizontal delta.
	DeltaX float64

	// CoarseDeltaX is the line-based delta for devices without precise
	// deltas.
	CoarseDeltaX float64

	// Precise selects DeltaX over CoarseDeltaX.
	Precise bool

	// Phase is the finger phase.
	Phase ScrollPhase

	// Momentum is the inertial phase after the fingers lifted.
	Momentum ScrollPhase
}

// ScrollNormalizer converts scroll events into scroll samples.
type ScrollNormalizer struct {
	gain   float64
	inside bool
}

// NewScrollNormalizer creates a scroll normalizer that multiplies deltas by
// gain. It starts out treating the pointer as inside the receiving area.
func NewScrollNormalizer(gain float64) *ScrollNormalizer {
	return &ScrollNormalizer{gain: gain, inside: true}
}

// SetGain changes the delta multiplier.
func (n *ScrollNormalizer) SetGain(gain float64) {
	n.gain = gain
}

// Gain returns the delta multiplier.
func (n *ScrollNormalizer) Gain() float64 {
	return n.gain
}

// SetInside records whether the pointer is over the receiving area. Scroll
// events outside it are dropped, except for end signals.
func (n *ScrollNormalizer) SetInside(inside bool) {
	n.inside = inside
}

// Inside reports whether scroll events are currently accepted.
func (n *ScrollNormalizer) Inside() bool {
	return n.inside
}

// Normalize classifies ev. It returns false when ev produces no sample.
func (n *ScrollNormalizer) Normalize(ev ScrollEvent) (Sample, bool) {
	delta := ev.CoarseDeltaX
	if ev.Precise {
		delta = ev.DeltaX
	}
	delta *= n.gain

	s := Sample{
		Source:   pager.SourceScroll,
		Delta:    delta,
		Momentum: ev.Momentum != 0,
	}

	const ends = ScrollEnded | ScrollCancelled
	switch {
	case ev.Phase.Any(ends) || ev.Momentum.Any(ends):
		s.Phase = PhaseEnd
	case !n.inside:
		return Sample{}, false
	case ev.Phase.Has(ScrollBegan):
		s.Phase = PhaseBegin
		s.Momentum = false
	case ev.Phase.Has(ScrollChanged):
		s.Phase = PhaseChange
	case ev.Phase == 0 && ev.Momentum.Any(ScrollBegan|ScrollChanged):
		s.Phase = PhaseChange
	default:
		return Sample{}, false
	}
	return s, true
}
