package pager

// EventKind identifies an engine notification.
type EventKind uint8

const (
	// EventSessionBegan is emitted when a session opens.
	EventSessionBegan EventKind = iota + 1
	// EventCommitted is emitted after a session's commit decision.
	EventCommitted
	// EventReset is emitted when a session is torn down without a decision.
	EventReset
	// EventIndexSet is emitted when the index is changed programmatically.
	EventIndexSet
)

// String returns a string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventSessionBegan:
		return "session-began"
	case EventCommitted:
		return "committed"
	case EventReset:
		return "reset"
	case EventIndexSet:
		return "index-set"
	default:
		return "unknown"
	}
}

// Event describes a state change of the engine.
type Event struct {
	Kind EventKind

	// Session is the session the event belongs to. Zero for EventIndexSet.
	Session SessionInfo

	// From and To are the page indexes before and after the event.
	From int
	To   int

	// Offset is the final offset the commit decision was made on.
	Offset float64

	// Reason explains an EventReset.
	Reason string
}

// Changed reports whether the event moved the page index.
func (e Event) Changed() bool {
	return e.From != e.To
}

// Listener receives engine events. Listeners run synchronously on the
// goroutine driving the engine and must not call back into it.
type Listener func(Event)

type listenerEntry struct {
	id uint64
	fn Listener
}
