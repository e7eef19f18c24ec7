package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks host performance and health counters. It is safe for
// concurrent use: frame ticks are counted from the ticker goroutine while
// everything else runs on the event loop.
type Metrics struct {
	// Frame timing
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64
	droppedTicks atomic.Uint64

	// Event processing
	eventCount   atomic.Uint64
	eventTotalNs atomic.Int64

	reloads        atomic.Uint64
	reloadFailures atomic.Uint64
	pluginErrors   atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordFrame records how long drawing a frame took.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	for {
		old := m.frameMaxNs.Load()
		if ns <= old {
			break
		}
		if m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordDroppedTick records a frame tick that could not be queued.
func (m *Metrics) RecordDroppedTick() {
	m.droppedTicks.Add(1)
}

// RecordEvent records event processing timing.
func (m *Metrics) RecordEvent(duration time.Duration) {
	m.eventCount.Add(1)
	m.eventTotalNs.Add(duration.Nanoseconds())
}

// RecordReload records a configuration reload attempt.
func (m *Metrics) RecordReload(ok bool) {
	if ok {
		m.reloads.Add(1)
		return
	}
	m.reloadFailures.Add(1)
}

// RecordPluginError records a failed plugin hook.
func (m *Metrics) RecordPluginError() {
	m.pluginErrors.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frameCount := m.frameCount.Load()
	eventCount := m.eventCount.Load()

	var avgFrame, avgEvent time.Duration
	if frameCount > 0 {
		avgFrame = time.Duration(m.frameTotalNs.Load() / int64(frameCount))
	}
	if eventCount > 0 {
		avgEvent = time.Duration(m.eventTotalNs.Load() / int64(eventCount))
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		FrameCount:     frameCount,
		AvgFrame:       avgFrame,
		MaxFrame:       time.Duration(m.frameMaxNs.Load()),
		LastFrame:      time.Duration(m.lastFrameNs.Load()),
		DroppedTicks:   m.droppedTicks.Load(),
		EventCount:     eventCount,
		AvgEvent:       avgEvent,
		Reloads:        m.reloads.Load(),
		ReloadFailures: m.reloadFailures.Load(),
		PluginErrors:   m.pluginErrors.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	FrameCount     uint64
	AvgFrame       time.Duration
	MaxFrame       time.Duration
	LastFrame      time.Duration
	DroppedTicks   uint64
	EventCount     uint64
	AvgEvent       time.Duration
	Reloads        uint64
	ReloadFailures uint64
	PluginErrors   uint64
}

// DropRate returns the percentage of frame ticks that were dropped.
func (s MetricsSnapshot) DropRate() float64 {
	total := s.FrameCount + s.DroppedTicks
	if total == 0 {
		return 0
	}
	return float64(s.DroppedTicks) / float64(total) * 100
}
