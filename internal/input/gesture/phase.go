package gesture

import (
	"strings"

	"github.com/dshills/swipepane/internal/pager"
)

// Phase is the lifecycle position of a normalized sample.
type Phase uint8

const (
	// PhaseNone marks an empty sample.
	PhaseNone Phase = iota
	// PhaseBegin is the first sample of a gesture.
	PhaseBegin
	// PhaseChange is a movement sample.
	PhaseChange
	// PhaseEnd is the final sample of a gesture.
	PhaseEnd
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseBegin:
		return "begin"
	case PhaseChange:
		return "change"
	case PhaseEnd:
		return "end"
	default:
		return "none"
	}
}

// Sample is one normalized input event.
type Sample struct {
	// Source is the input that produced the sample.
	Source pager.Source

	// Delta is the signed horizontal movement since the previous sample.
	// Negative means towards the next page.
	Delta float64

	// Phase is the sample's lifecycle position.
	Phase Phase

	// Momentum marks inertial scroll continuation after the fingers lifted.
	Momentum bool
}

// ScrollPhase is a set of trackpad phase flags.
type ScrollPhase uint8

// Scroll phase flags.
const (
	ScrollBegan ScrollPhase = 1 << iota
	ScrollStationary
	ScrollChanged
	ScrollEnded
	ScrollCancelled
	ScrollMayBegin
)

// Has reports whether all flags in f are set.
func (p ScrollPhase) Has(f ScrollPhase) bool {
	return f != 0 && p&f == f
}

// Any reports whether any flag in f is set.
func (p ScrollPhase) Any(f ScrollPhase) bool {
	return p&f != 0
}

// String returns the set flags joined with '|'.
func (p ScrollPhase) String() string {
	if p == 0 {
		return "none"
	}

	names := []struct {
		flag ScrollPhase
		name string
	}{
		{ScrollBegan, "began"},
		{ScrollStationary, "stationary"},
		{ScrollChanged, "changed"},
		{ScrollEnded, "ended"},
		{ScrollCancelled, "cancelled"},
		{ScrollMayBegin, "may-begin"},
	}

	var parts []string
	for _, n := range names {
		if p.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
