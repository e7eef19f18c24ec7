package gesture

import (
	"time"

	"github.com/dshills/swipepane/internal/pager"
)

// Result reports what a delivered sample did to the engine.
type Result struct {
	// Began is set when the sample opened a session.
	Began bool

	// Committed is set when the sample ended the session it belongs to.
	Committed bool

	// Changed is set when the commit moved the page index.
	Changed bool

	// Offset is the engine's live offset after the sample.
	Offset float64
}

// Router feeds normalized samples from every source into one engine.
type Router struct {
	engine    *pager.Engine
	pageWidth float64
}

// NewRouter creates a router for e.
func NewRouter(e *pager.Engine) *Router {
	return &Router{engine: e}
}

// SetPageWidth sets the page width used for offsets and thresholds.
func (r *Router) SetPageWidth(w float64) {
	r.pageWidth = w
}

// PageWidth returns the current page width.
func (r *Router) PageWidth() float64 {
	return r.pageWidth
}

// Engine returns the engine the router drives.
func (r *Router) Engine() *pager.Engine {
	return r.engine
}

// Deliver applies s to the engine at time now.
//
// A begin sample or a finger-driven change sample may open a session when
// none is active. Momentum samples keep the owner's session alive but never
// open one or move the offset. An end sample applies its residual delta and
// then makes the commit call with the engine's live offset.
func (r *Router) Deliver(s Sample, now time.Time) Result {
	var res Result
	if r.engine == nil || !s.Source.Valid() {
		return res
	}

	switch s.Phase {
	case PhaseBegin, PhaseChange:
		if !s.Momentum && !r.engine.Active() {
			res.Began = r.engine.BeginSession(s.Source, now)
		}
		r.engine.Touch(s.Source, now)
		if !s.Momentum {
			r.engine.UpdateOffset(s.Source, s.Delta, r.pageWidth)
		}

	case PhaseEnd:
		info, ok := r.engine.Session()
		owner := ok && info.Source == s.Source
		if owner && !s.Momentum && s.Delta != 0 {
			r.engine.UpdateOffset(s.Source, s.Delta, r.pageWidth)
		}
		res.Changed = r.engine.EndSession(s.Source, r.engine.LiveOffset(), r.pageWidth, now)
		res.Committed = owner && !r.engine.Active()
	}

	res.Offset = r.engine.LiveOffset()
	return res
}
