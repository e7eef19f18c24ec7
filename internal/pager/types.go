package pager

import "time"

// Source identifies the input normalizer that owns a session.
type Source uint8

const (
	// SourceNone is the zero value and never owns a session.
	SourceNone Source = iota
	// SourceDrag is a pointer drag gesture.
	SourceDrag
	// SourceScroll is a two-finger scroll (or horizontal wheel) gesture.
	SourceScroll
)

// String returns a string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceDrag:
		return "drag"
	case SourceScroll:
		return "scroll"
	default:
		return "none"
	}
}

// Valid reports whether s can own a session.
func (s Source) Valid() bool {
	return s == SourceDrag || s == SourceScroll
}

// Direction is the sign a gesture has been locked to.
type Direction uint8

const (
	// DirectionUnknown means the gesture has not moved past the lock epsilon yet.
	DirectionUnknown Direction = iota
	// DirectionNegative is a gesture toward the next page.
	DirectionNegative
	// DirectionPositive is a gesture toward the previous page.
	DirectionPositive
)

// String returns a string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionNegative:
		return "negative"
	case DirectionPositive:
		return "positive"
	default:
		return "unknown"
	}
}

// session is the per-gesture state. It only exists while a gesture is in
// progress and is dropped right after its commit decision.
type session struct {
	id        string
	source    Source
	direction Direction

	// committed guarantees a single commit decision per session.
	committed bool

	// endGuardArmed is consumed by the first end signal. Trackpads report a
	// phase end and a momentum end for the same physical gesture.
	endGuardArmed bool

	// travel is the accumulated displacement after the direction and edge
	// clamps, before snapping. Snapping only affects the reported offset so
	// that slow gestures can still leave the snap window.
	travel float64

	startedAt    time.Time
	lastActivity time.Time
}

func (s *session) info() SessionInfo {
	return SessionInfo{
		ID:            s.id,
		Source:        s.source,
		Direction:     s.direction,
		Committed:     s.committed,
		EndGuardArmed: s.endGuardArmed,
		StartedAt:     s.startedAt,
		LastActivity:  s.lastActivity,
	}
}

// SessionInfo is a read-only snapshot of the active session.
type SessionInfo struct {
	// ID uniquely identifies the session in logs and hooks.
	ID string

	// Source is the input that owns the session.
	Source Source

	// Direction is the locked direction, or DirectionUnknown.
	Direction Direction

	// Committed is true once the commit decision was made.
	Committed bool

	// EndGuardArmed is true until the first end signal is consumed.
	EndGuardArmed bool

	// StartedAt is when the session began.
	StartedAt time.Time

	// LastActivity is the last time the owning source touched the session.
	LastActivity time.Time
}

// Age returns how long the session has been open at now.
func (i SessionInfo) Age(now time.Time) time.Duration {
	return now.Sub(i.StartedAt)
}

// Idle returns how long the session has gone without activity at now.
func (i SessionInfo) Idle(now time.Time) time.Duration {
	last := i.LastActivity
	if last.IsZero() || last.Before(i.StartedAt) {
		last = i.StartedAt
	}
	return now.Sub(last)
}
