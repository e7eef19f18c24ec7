package pager

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine is the gesture-to-page state machine.
//
// The committed page index and the live offset are kept apart on purpose: the
// offset changes on every update, the index at most once per session.
type Engine struct {
	params  Params
	pending *Params

	pageCount    int
	pendingPages int
	index     int
	offset    float64

	session       *session
	cooldownUntil time.Time

	// lastEnded is the source of the last committed session until the next
	// one begins; a second end from it is a duplicate end signal.
	lastEnded Source

	newID   func() string
	metrics *Metrics

	listeners      []listenerEntry
	nextListenerID uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithIndex sets the initial page index. Out-of-range values are clamped.
func WithIndex(index int) Option {
	return func(e *Engine) {
		e.index = index
	}
}

// WithIDGenerator replaces the session ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithMetrics shares a metrics tracker with the engine.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New creates an engine over pageCount pages.
func New(pageCount int, params Params, opts ...Option) (*Engine, error) {
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageCount, pageCount)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		params:    params,
		pageCount: pageCount,
		newID:     uuid.NewString,
		metrics:   NewMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.index = clampIndex(e.index, e.pageCount)

	return e, nil
}

// BeginSession opens a session owned by src. It fails when a session is
// already active or when now is still inside the post-commit cooldown.
func (e *Engine) BeginSession(src Source, now time.Time) bool {
	if !src.Valid() {
		return false
	}
	if e.session != nil {
		e.metrics.recordRejectedBusy()
		return false
	}
	if now.Before(e.cooldownUntil) {
		e.metrics.recordRejectedCooldown()
		return false
	}

	e.session = &session{
		id:            e.newID(),
		source:        src,
		direction:     DirectionUnknown,
		endGuardArmed: true,
		startedAt:     now,
		lastActivity:  now,
	}
	e.offset = 0
	e.lastEnded = SourceNone

	e.metrics.recordSessionBegan()
	e.emit(Event{
		Kind:    EventSessionBegan,
		Session: e.session.info(),
		From:    e.index,
		To:      e.index,
	})
	return true
}

// UpdateOffset moves the live offset by rawDelta and returns the new offset.
// Calls from a source that does not own the session return the current offset
// unchanged.
func (e *Engine) UpdateOffset(src Source, rawDelta, pageWidth float64) float64 {
	s := e.owned(src)
	if s == nil {
		return e.offset
	}
	if !finite(rawDelta) || !finite(pageWidth) || pageWidth <= 0 {
		return e.offset
	}

	snap, _, maxStep := e.params.Thresholds(pageWidth)

	candidate := s.travel + clampMagnitude(rawDelta, maxStep)
	s.direction = lockDirection(s.direction, candidate, e.params.DirectionEpsilon)
	candidate = clampDirection(candidate, s.direction)
	candidate = clampEdges(candidate, e.index, e.pageCount, pageWidth)
	s.travel = candidate

	e.offset = snapToRest(candidate, snap)
	return e.offset
}

// Touch records activity from the owning source for the watchdog.
func (e *Engine) Touch(src Source, now time.Time) {
	if s := e.owned(src); s != nil && now.After(s.lastActivity) {
		s.lastActivity = now
	}
}

// EndSession makes the session's single commit decision and tears it down.
// It returns whether the page index changed. Repeated end signals for the same
// gesture and calls from a non-owning source are ignored.
func (e *Engine) EndSession(src Source, finalOffset, pageWidth float64, now time.Time) bool {
	if e.session == nil && src.Valid() && src == e.lastEnded {
		e.metrics.recordDuplicateEnd()
		e.lastEnded = SourceNone
		return false
	}

	s := e.owned(src)
	if s == nil {
		return false
	}
	if !s.endGuardArmed {
		e.metrics.recordDuplicateEnd()
		return false
	}
	s.endGuardArmed = false
	if s.committed {
		return false
	}

	from := e.index
	total := 0.0
	if finite(finalOffset) && finite(pageWidth) && pageWidth > 0 {
		total = clampDirection(finalOffset, s.direction)
		threshold := e.params.DecisionRatio * pageWidth
		switch {
		case total <= -threshold:
			e.index = min(e.index+1, e.pageCount-1)
		case total >= threshold:
			e.index = max(e.index-1, 0)
		}
	}

	s.committed = true
	e.cooldownUntil = now.Add(e.params.Cooldown)

	info := s.info()
	e.teardown()
	e.lastEnded = src

	e.metrics.recordCommit(e.index-from, now.Sub(info.StartedAt))
	e.emit(Event{
		Kind:    EventCommitted,
		Session: info,
		From:    from,
		To:      e.index,
		Offset:  total,
	})
	return e.index != from
}

// ForceReset tears down an active session without a commit decision. The
// cooldown is left untouched; the index only moves when a held-back page
// count no longer contains it. It returns false when no session is
// active.
func (e *Engine) ForceReset(reason string, now time.Time) bool {
	if e.session == nil {
		return false
	}

	info := e.session.info()
	from := e.index
	e.teardown()

	e.metrics.recordForcedReset(now.Sub(info.StartedAt))
	e.emit(Event{
		Kind:    EventReset,
		Session: info,
		From:    from,
		To:      e.index,
		Reason:  reason,
	})
	return true
}

// SetIndex moves to page index directly, clamped into range. It is refused
// while a gesture is in progress. It returns whether the index changed.
func (e *Engine) SetIndex(index int) bool {
	if e.session != nil {
		return false
	}

	from := e.index
	e.index = clampIndex(index, e.pageCount)
	if e.index == from {
		return false
	}

	e.emit(Event{Kind: EventIndexSet, From: from, To: e.index})
	return true
}

// SetPageCount replaces the page count. The index is clamped into the new
// range. While a session is active the count is held back until it ends,
// like SetParams.
func (e *Engine) SetPageCount(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageCount, n)
	}
	if e.session != nil {
		e.pendingPages = n
		return nil
	}

	e.pageCount = n
	e.pendingPages = 0
	e.index = clampIndex(e.index, n)
	return nil
}

// SetParams replaces the tunables. While a session is active the new values
// are held back until it ends so that a gesture never changes rules midway.
func (e *Engine) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if e.session != nil {
		e.pending = &p
		return nil
	}
	e.params = p
	e.pending = nil
	return nil
}

// Subscribe registers a listener and returns a function that removes it.
func (e *Engine) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	e.nextListenerID++
	id := e.nextListenerID
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: fn})

	// Removal copies so that an emit in progress keeps its slice intact.
	return func() {
		kept := make([]listenerEntry, 0, len(e.listeners))
		for _, l := range e.listeners {
			if l.id != id {
				kept = append(kept, l)
			}
		}
		e.listeners = kept
	}
}

// Index returns the committed page index.
func (e *Engine) Index() int {
	return e.index
}

// PageCount returns the number of pages.
func (e *Engine) PageCount() int {
	return e.pageCount
}

// LiveOffset returns the displacement from the resting position of the
// current page. It is zero whenever no session is active.
func (e *Engine) LiveOffset() float64 {
	return e.offset
}

// Position returns where the page strip should be drawn for pageWidth.
func (e *Engine) Position(pageWidth float64) float64 {
	return -float64(e.index)*pageWidth + e.offset
}

// Session returns the active session, if any.
func (e *Engine) Session() (SessionInfo, bool) {
	if e.session == nil {
		return SessionInfo{}, false
	}
	return e.session.info(), true
}

// Active reports whether a session is in progress.
func (e *Engine) Active() bool {
	return e.session != nil
}

// CooldownUntil returns the earliest time a new session may begin.
func (e *Engine) CooldownUntil() time.Time {
	return e.cooldownUntil
}

// Params returns the tunables in effect.
func (e *Engine) Params() Params {
	return e.params
}

// Metrics returns a snapshot of the engine's metrics.
func (e *Engine) Metrics() Snapshot {
	return e.metrics.Snapshot()
}

// owned returns the session if src owns it.
func (e *Engine) owned(src Source) *session {
	if e.session == nil {
		e.metrics.recordIgnoredIdle()
		return nil
	}
	if e.session.source != src {
		e.metrics.recordIgnoredForeign()
		return nil
	}
	return e.session
}

// teardown drops the session and applies held-back parameters and page
// count.
func (e *Engine) teardown() {
	e.session = nil
	e.offset = 0
	if e.pending != nil {
		e.params = *e.pending
		e.pending = nil
	}
	if e.pendingPages > 0 {
		e.pageCount = e.pendingPages
		e.pendingPages = 0
		e.index = clampIndex(e.index, e.pageCount)
	}
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l.fn(ev)
	}
}
