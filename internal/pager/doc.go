// Package pager implements the gesture-to-page decision engine for a paged,
// swipeable panel.
//
// The engine turns a stream of positional deltas coming from two independent
// input sources (a pointer drag and a two-finger scroll) into at most one page
// transition per physical gesture. While a gesture is in progress the engine
// only produces a live offset for the page strip to follow; the page index is
// decided once, when the gesture ends.
//
// # Sessions
//
// A session is the lifetime of one physical gesture. Exactly one source may own
// the session; every call made with the other source while it is active is
// ignored:
//
//	e, _ := pager.New(3, pager.DefaultParams())
//	if e.BeginSession(pager.SourceDrag, now) {
//	    e.UpdateOffset(pager.SourceDrag, -80, 300)          // follows the finger
//	    e.EndSession(pager.SourceDrag, e.LiveOffset(), 300, now)
//	}
//
// # Offset pipeline
//
// Each UpdateOffset call runs the same clamping pipeline:
//
//   - magnitude clamp: a single call moves at most MaxStepRatio × width
//   - direction lock: the first displacement beyond DirectionEpsilon fixes
//     the gesture's sign for the rest of the session
//   - direction clamp: a locked gesture cannot cross back through zero
//   - edge clamp: nothing to pull in before the first or after the last page
//   - snap: offsets inside SnapWindowRatio × width read as exactly zero
//
// A negative offset always means "advance to the next page" and a positive
// offset always means "go back", whichever source produced it.
//
// # Cooldown
//
// Each commit starts a short cooldown during which no new session may begin.
// This keeps the residual events of a just-finished gesture (trackpad
// momentum in particular) from opening a second session.
//
// # Thread Safety
//
// Engine is not safe for concurrent use. All calls must come from a single
// goroutine, typically the host's event loop. Hosts receiving input on several
// goroutines must serialize delivery before calling the engine.
package pager
