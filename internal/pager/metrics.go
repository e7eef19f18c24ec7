package pager

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const defaultDurationSamples = 256

// Metrics counts gesture outcomes. Counters are atomic so that a host may read
// a snapshot from another goroutine while the engine keeps running.
type Metrics struct {
	sessionsBegun    atomic.Uint64
	rejectedBusy     atomic.Uint64
	rejectedCooldown atomic.Uint64
	ignoredForeign   atomic.Uint64
	ignoredIdle      atomic.Uint64
	duplicateEnds    atomic.Uint64
	advances         atomic.Uint64
	retreats         atomic.Uint64
	reverts          atomic.Uint64
	forcedResets     atomic.Uint64

	// Session durations, circular buffer
	mu          sync.RWMutex
	durations   []time.Duration
	durationIdx int
	peak        atomic.Int64

	enabled atomic.Bool
}

// NewMetrics creates a metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		durations: make([]time.Duration, defaultDurationSamples),
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether collection is enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled.Load()
}

func (m *Metrics) inc(c *atomic.Uint64) {
	if m == nil || !m.enabled.Load() {
		return
	}
	c.Add(1)
}

func (m *Metrics) recordSessionBegan() {
	if m != nil {
		m.inc(&m.sessionsBegun)
	}
}

func (m *Metrics) recordRejectedBusy() {
	if m != nil {
		m.inc(&m.rejectedBusy)
	}
}

func (m *Metrics) recordRejectedCooldown() {
	if m != nil {
		m.inc(&m.rejectedCooldown)
	}
}

func (m *Metrics) recordIgnoredForeign() {
	if m != nil {
		m.inc(&m.ignoredForeign)
	}
}

func (m *Metrics) recordIgnoredIdle() {
	if m != nil {
		m.inc(&m.ignoredIdle)
	}
}

func (m *Metrics) recordDuplicateEnd() {
	if m != nil {
		m.inc(&m.duplicateEnds)
	}
}

func (m *Metrics) recordForcedReset(d time.Duration) {
	if m == nil {
		return
	}
	m.inc(&m.forcedResets)
	m.recordDuration(d)
}

// recordCommit records a commit decision. delta is the index change.
func (m *Metrics) recordCommit(delta int, d time.Duration) {
	if m == nil {
		return
	}
	switch {
	case delta > 0:
		m.inc(&m.advances)
	case delta < 0:
		m.inc(&m.retreats)
	default:
		m.inc(&m.reverts)
	}
	m.recordDuration(d)
}

func (m *Metrics) recordDuration(d time.Duration) {
	if !m.enabled.Load() || d <= 0 {
		return
	}

	ns := d.Nanoseconds()
	for {
		current := m.peak.Load()
		if ns <= current {
			break
		}
		if m.peak.CompareAndSwap(current, ns) {
			break
		}
	}

	m.mu.Lock()
	m.durations[m.durationIdx] = d
	m.durationIdx = (m.durationIdx + 1) % len(m.durations)
	m.mu.Unlock()
}

// Snapshot is a point-in-time view of the metrics.
type Snapshot struct {
	SessionsBegun    uint64
	RejectedBusy     uint64
	RejectedCooldown uint64
	IgnoredForeign   uint64
	IgnoredIdle      uint64
	DuplicateEnds    uint64
	Advances         uint64
	Retreats         uint64
	Reverts          uint64
	ForcedResets     uint64

	AvgSessionDuration  time.Duration
	P99SessionDuration  time.Duration
	PeakSessionDuration time.Duration
}

// Commits returns the number of commit decisions, including reverts.
func (s Snapshot) Commits() uint64 {
	return s.Advances + s.Retreats + s.Reverts
}

// Snapshot returns the current metrics.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}

	m.mu.RLock()
	durations := make([]time.Duration, 0, len(m.durations))
	for _, d := range m.durations {
		if d > 0 {
			durations = append(durations, d)
		}
	}
	m.mu.RUnlock()

	snap := Snapshot{
		SessionsBegun:       m.sessionsBegun.Load(),
		RejectedBusy:        m.rejectedBusy.Load(),
		RejectedCooldown:    m.rejectedCooldown.Load(),
		IgnoredForeign:      m.ignoredForeign.Load(),
		IgnoredIdle:         m.ignoredIdle.Load(),
		DuplicateEnds:       m.duplicateEnds.Load(),
		Advances:            m.advances.Load(),
		Retreats:            m.retreats.Load(),
		Reverts:             m.reverts.Load(),
		ForcedResets:        m.forcedResets.Load(),
		PeakSessionDuration: time.Duration(m.peak.Load()),
	}
	snap.AvgSessionDuration, snap.P99SessionDuration = durationStats(durations)
	return snap
}

// durationStats computes the average and p99 of the samples.
func durationStats(samples []time.Duration) (avg, p99 time.Duration) {
	if len(samples) == 0 {
		return 0, 0
	}

	var sum time.Duration
	for _, d := range samples {
		sum += d
	}
	avg = sum / time.Duration(len(samples))

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	idx := int(float64(len(samples)) * 0.99)
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return avg, samples[idx]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Uint64{
		&m.sessionsBegun, &m.rejectedBusy, &m.rejectedCooldown,
		&m.ignoredForeign, &m.ignoredIdle, &m.duplicateEnds,
		&m.advances, &m.retreats, &m.reverts, &m.forcedResets,
	} {
		c.Store(0)
	}
	m.peak.Store(0)

	m.mu.Lock()
	m.durations = make([]time.Duration, len(m.durations))
	m.durationIdx = 0
	m.mu.Unlock()
}
