// Package gesture turns raw pointer and scroll input into the normalized
// samples consumed by the pager engine.
//
// Each input source has its own normalizer. A normalizer never talks to the
// engine; it only classifies platform events into samples carrying a signed
// horizontal delta, a phase and a momentum flag:
//
//	drag := gesture.NewDragNormalizer(gesture.DefaultDragMinDistance)
//	if s, ok := drag.Normalize(gesture.PointerEvent{X: x, Y: y, Down: true}); ok {
//	    router.Deliver(s, time.Now())
//	}
//
// # Sign Convention
//
// A negative delta always means "towards the next page" regardless of the
// source. Dragging the pointer to the left and scrolling content to the left
// both produce negative deltas.
//
// # Drag
//
// DragNormalizer arms on a press inside its area, begins once the pointer has
// travelled the minimum distance, reports per-event deltas while moving and
// ends on release. Vertical motion is ignored.
//
// # Scroll
//
// ScrollNormalizer consumes trackpad-style events whose phase and momentum
// phase are independent flag sets. Both end signals of one physical gesture
// (phase end and momentum end) are passed through; the engine absorbs the
// second one. Terminals only report discrete wheel ticks, so WheelPhaser
// synthesizes began/changed/ended phases from tick timing.
//
// # Router
//
// Router is the only type that calls into the engine. It decides which
// samples may open a session, keeps the session's activity time current for
// the watchdog and makes the commit call with the engine's live offset.
//
// # Thread Safety
//
// None of the types in this package are safe for concurrent use. They are
// driven from the same goroutine as the engine.
package gesture
