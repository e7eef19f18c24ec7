package gesture

import (
	"math"

	"github.com/dshills/swipepane/internal/pager"
)

// DefaultDragMinDistance is the horizontal travel required before a press
// becomes a drag.
const DefaultDragMinDistance = 4

// PointerEvent is a pointer position with the primary button state.
type PointerEvent struct {
	X, Y float64
	Down bool
}

// DragNormalizer converts press/move/release pointer events into drag
// samples.
type DragNormalizer struct {
	minDistance float64
	area        Area

	// pressed is set from a press inside the area until release.
	pressed bool

	// begun is set once the minimum distance has been reached.
	begun bool

	// rejected is set from a press outside the area until release.
	rejected bool

	startX float64
	lastX  float64
}

// NewDragNormalizer creates a drag normalizer. A press anywhere is accepted
// until SetArea is called.
func NewDragNormalizer(minDistance float64) *DragNormalizer {
	if minDistance < 0 {
		minDistance = 0
	}
	return &DragNormalizer{minDistance: minDistance}
}

// SetArea restricts where a drag may start. An empty area accepts presses
// anywhere.
func (d *DragNormalizer) SetArea(a Area) {
	d.area = a
}

// SetMinDistance changes the minimum travel for later drags.
func (d *DragNormalizer) SetMinDistance(v float64) {
	d.minDistance = max(v, 0)
}

// Active reports whether a drag has begun and not yet been released.
func (d *DragNormalizer) Active() bool {
	return d.begun
}

// Reset forgets any press or drag in progress.
func (d *DragNormalizer) Reset() {
	d.pressed = false
	d.begun = false
	d.rejected = false
	d.startX = 0
	d.lastX = 0
}

// Normalize classifies ev. It returns false when ev produces no sample.
func (d *DragNormalizer) Normalize(ev PointerEvent) (Sample, bool) {
	switch {
	case ev.Down && d.rejected:
		return Sample{}, false

	case ev.Down && !d.pressed:
		if !d.area.Empty() && !d.area.Contains(ev.X, ev.Y) {
			d.rejected = true
			return Sample{}, false
		}
		d.pressed = true
		d.startX = ev.X
		d.lastX = ev.X
		return Sample{}, false

	case ev.Down && !d.begun:
		translation := ev.X - d.startX
		if math.Abs(translation) < d.minDistance || translation == 0 {
			return Sample{}, false
		}
		d.begun = true
		d.lastX = ev.X
		return d.sample(translation, PhaseBegin), true

	case ev.Down:
		delta := ev.X - d.lastX
		if delta == 0 {
			return Sample{}, false
		}
		d.lastX = ev.X
		return d.sample(delta, PhaseChange), true

	case d.begun:
		delta := ev.X - d.lastX
		d.Reset()
		return d.sample(delta, PhaseEnd), true

	default:
		d.Reset()
		return Sample{}, false
	}
}

func (d *DragNormalizer) sample(delta float64, phase Phase) Sample {
	return Sample{
		Source: pager.SourceDrag,
		Delta:  delta,
		Phase:  phase,
	}
}
