package pager

import (
	"fmt"
	"time"
)

// DefaultWatchdogGrace is how long a session may go without activity before
// the watchdog tears it down.
const DefaultWatchdogGrace = 3 * time.Second

// Watchdog resets sessions whose owning source stopped delivering events, for
// example when the platform drops a gesture's end signal. The engine does not
// heal abandoned sessions by itself.
type Watchdog struct {
	grace time.Duration
}

// NewWatchdog creates a watchdog. A non-positive grace disables it.
func NewWatchdog(grace time.Duration) *Watchdog {
	return &Watchdog{grace: grace}
}

// Grace returns the configured grace period.
func (w *Watchdog) Grace() time.Duration {
	if w == nil {
		return 0
	}
	return w.grace
}

// SetGrace changes the grace period.
func (w *Watchdog) SetGrace(grace time.Duration) {
	w.grace = grace
}

// Check force-resets the engine's session if it has been idle for longer than
// the grace period. It returns whether a reset happened.
func (w *Watchdog) Check(e *Engine, now time.Time) bool {
	if w == nil || w.grace <= 0 || e == nil {
		return false
	}

	info, ok := e.Session()
	if !ok {
		return false
	}
	if info.Idle(now) < w.grace {
		return false
	}

	return e.ForceReset(fmt.Sprintf("watchdog: %s session idle for %s", info.Source, info.Idle(now).Round(time.Millisecond)), now)
}
