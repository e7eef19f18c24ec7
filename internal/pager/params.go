package pager

import (
	"fmt"
	"math"
	"time"
)

// Params holds the engine's tunable parameters. Ratios are relative to the
// page width supplied on each call.
type Params struct {
	// ScrollGain multiplies raw scroll deltas before they reach the engine.
	// It is applied by the scroll normalizer and carried here so that all
	// tunables travel together.
	ScrollGain float64

	// MaxStepRatio bounds how far a single update may move the offset.
	MaxStepRatio float64

	// SnapWindowRatio is the zone around rest that reads as exactly zero.
	SnapWindowRatio float64

	// DecisionRatio is the commit threshold.
	DecisionRatio float64

	// DirectionEpsilon is the absolute displacement that locks direction,
	// in the same unit as the page width.
	DirectionEpsilon float64

	// Cooldown is the minimum gap between a commit and the next session.
	Cooldown time.Duration
}

// DefaultParams returns the default tuning.
func DefaultParams() Params {
	return Params{
		ScrollGain:       8.0,
		MaxStepRatio:     0.20,
		SnapWindowRatio:  0.09,
		DecisionRatio:    0.20,
		DirectionEpsilon: 6.0,
		Cooldown:         80 * time.Millisecond,
	}
}

// Validate checks that the parameters keep the clamping order sound.
func (p Params) Validate() error {
	switch {
	case !finite(p.ScrollGain) || p.ScrollGain <= 0:
		return &ParamError{Field: "ScrollGain", Value: p.ScrollGain, Reason: "must be positive"}
	case !finite(p.MaxStepRatio) || p.MaxStepRatio <= 0:
		return &ParamError{Field: "MaxStepRatio", Value: p.MaxStepRatio, Reason: "must be positive"}
	case !finite(p.SnapWindowRatio) || p.SnapWindowRatio <= 0:
		return &ParamError{Field: "SnapWindowRatio", Value: p.SnapWindowRatio, Reason: "must be positive"}
	case !finite(p.DecisionRatio) || p.DecisionRatio >= 1:
		return &ParamError{Field: "DecisionRatio", Value: p.DecisionRatio, Reason: "must be below 1"}
	case p.SnapWindowRatio >= p.DecisionRatio:
		return &ParamError{
			Field:  "SnapWindowRatio",
			Value:  p.SnapWindowRatio,
			Reason: fmt.Sprintf("must be below DecisionRatio (%v)", p.DecisionRatio),
		}
	case !finite(p.DirectionEpsilon) || p.DirectionEpsilon < 0:
		return &ParamError{Field: "DirectionEpsilon", Value: p.DirectionEpsilon, Reason: "must not be negative"}
	case p.Cooldown < 0:
		return &ParamError{Field: "Cooldown", Value: p.Cooldown, Reason: "must not be negative"}
	}
	return nil
}

// Warnings lists combinations that are valid but probably unintended.
func (p Params) Warnings() []string {
	var warnings []string
	if p.MaxStepRatio < p.DecisionRatio {
		warnings = append(warnings, fmt.Sprintf(
			"MaxStepRatio %.3f is below DecisionRatio %.3f: a single update can never reach the commit threshold",
			p.MaxStepRatio, p.DecisionRatio))
	}
	return warnings
}

// Thresholds returns the absolute snap window, commit threshold and per-call
// step limit for a page width.
func (p Params) Thresholds(pageWidth float64) (snap, decision, maxStep float64) {
	return p.SnapWindowRatio * pageWidth, p.DecisionRatio * pageWidth, p.MaxStepRatio * pageWidth
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
