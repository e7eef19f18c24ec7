package pager

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestDefaultParamsValid(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() error = %v", err)
	}
	if w := p.Warnings(); len(w) != 0 {
		t.Errorf("DefaultParams().Warnings() = %v, want none", w)
	}
	if !(p.SnapWindowRatio < p.DecisionRatio && p.DecisionRatio < 1) {
		t.Error("defaults violate snap < decision < 1")
	}
	if p.MaxStepRatio < p.DecisionRatio {
		t.Error("defaults violate maxStep >= decision")
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
		field  string
	}{
		{"zero gain", func(p *Params) { p.ScrollGain = 0 }, "ScrollGain"},
		{"NaN gain", func(p *Params) { p.ScrollGain = math.NaN() }, "ScrollGain"},
		{"negative max step", func(p *Params) { p.MaxStepRatio = -0.1 }, "MaxStepRatio"},
		{"zero snap", func(p *Params) { p.SnapWindowRatio = 0 }, "SnapWindowRatio"},
		{"decision at one", func(p *Params) { p.DecisionRatio = 1 }, "DecisionRatio"},
		{"snap above decision", func(p *Params) { p.SnapWindowRatio = 0.3 }, "SnapWindowRatio"},
		{"snap equal decision", func(p *Params) { p.SnapWindowRatio = p.DecisionRatio }, "SnapWindowRatio"},
		{"negative epsilon", func(p *Params) { p.DirectionEpsilon = -1 }, "DirectionEpsilon"},
		{"negative cooldown", func(p *Params) { p.Cooldown = -time.Millisecond }, "Cooldown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)

			err := p.Validate()
			if !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("Validate() error = %v, want ErrInvalidParams", err)
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Field != tt.field {
				t.Errorf("Validate() field = %v, want %s", err, tt.field)
			}
		})
	}
}

func TestParamsWarnsOnSmallMaxStep(t *testing.T) {
	p := DefaultParams()
	p.MaxStepRatio = 0.18

	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	w := p.Warnings()
	if len(w) != 1 || !strings.Contains(w[0], "MaxStepRatio") {
		t.Errorf("Warnings() = %v, want one MaxStepRatio warning", w)
	}
}

func TestParamsThresholds(t *testing.T) {
	snap, decision, maxStep := DefaultParams().Thresholds(300)
	if !approx(snap, 27) || !approx(decision, 60) || !approx(maxStep, 60) {
		t.Errorf("Thresholds(300) = %v, %v, %v, want 27, 60, 60", snap, decision, maxStep)
	}
}
