package gesture

import "time"

// Defaults for WheelPhaser.
const (
	DefaultWheelTick = 1.5
	DefaultWheelIdle = 150 * time.Millisecond
)

// WheelDirection is the direction of a horizontal wheel tick.
type WheelDirection int8

const (
	// WheelLeft scrolls content to the right, towards the previous page.
	WheelLeft WheelDirection = iota + 1
	// WheelRight scrolls content to the left, towards the next page.
	WheelRight
)

// String returns a string representation of the wheel direction.
func (d WheelDirection) String() string {
	switch d {
	case WheelLeft:
		return "left"
	case WheelRight:
		return "right"
	default:
		return "none"
	}
}

// WheelPhaser synthesizes phased scroll events from discrete wheel ticks.
// The first tick after a pause begins a gesture, later ticks change it and
// a pause of at least the idle timeout ends it.
type WheelPhaser struct {
	tick float64
	idle time.Duration

	active bool
	last   time.Time
}

// NewWheelPhaser creates a phaser emitting tick units per wheel tick.
func NewWheelPhaser(tick float64, idle time.Duration) *WheelPhaser {
	return &WheelPhaser{tick: tick, idle: idle}
}

// SetTick changes the delta emitted per wheel tick.
func (w *WheelPhaser) SetTick(tick float64) {
	w.tick = tick
}

// SetIdle changes the pause that ends a gesture.
func (w *WheelPhaser) SetIdle(idle time.Duration) {
	w.idle = idle
}

// Active reports whether a synthesized gesture is open.
func (w *WheelPhaser) Active() bool {
	return w.active
}

// Wheel records a tick at now and returns the event it produces.
func (w *WheelPhaser) Wheel(dir WheelDirection, now time.Time) ScrollEvent {
	delta := w.tick
	if dir == WheelRight {
		delta = -delta
	}

	phase := ScrollChanged
	if !w.active {
		phase = ScrollBegan
		w.active = true
	}
	w.last = now

	return ScrollEvent{
		DeltaX:       delta,
		CoarseDeltaX: delta,
		Precise:      true,
		Phase:        phase,
	}
}

// Tick closes the open gesture once the wheel has been idle long enough. It
// returns the end event and true when it did.
func (w *WheelPhaser) Tick(now time.Time) (ScrollEvent, bool) {
	if !w.active || now.Sub(w.last) < w.idle {
		return ScrollEvent{}, false
	}
	w.active = false
	return ScrollEvent{Precise: true, Phase: ScrollEnded}, true
}
