package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Feed
	ticks          atomic.Uint64
	updatesEmitted atomic.Uint64

	// Store
	updatesApplied       atomic.Uint64
	updatesIgnored       atomic.Uint64
	fetchesTotal         atomic.Uint64
	fetchFailures        atomic.Uint64
	staleFetches         atomic.Uint64
	notificationsEvicted atomic.Uint64

	// Dispatcher
	eventsProcessed atomic.Uint64
	errorsTotal     atomic.Uint64
	latencySumNs    atomic.Int64
	latencyCount    atomic.Uint64
}

// RecordTick records one feed tick and the number of updates it emitted.
func (m *Metrics) RecordTick(emitted int) {
	m.ticks.Add(1)
	m.updatesEmitted.Add(uint64(emitted))
}

// RecordUpdate records whether a price update matched a loaded token.
func (m *Metrics) RecordUpdate(applied bool) {
	if applied {
		m.updatesApplied.Add(1)
	} else {
		m.updatesIgnored.Add(1)
	}
}

// RecordFetch records a completed fetch.
func (m *Metrics) RecordFetch(err error) {
	m.fetchesTotal.Add(1)
	if err != nil {
		m.fetchFailures.Add(1)
	}
}

// RecordStaleFetch records a fetch result discarded because a newer one was issued.
func (m *Metrics) RecordStaleFetch() {
	m.staleFetches.Add(1)
}

// RecordNotificationEvicted records a notification dropped by the queue cap.
func (m *Metrics) RecordNotificationEvicted() {
	m.notificationsEvicted.Add(1)
}

// RecordEvent records an event processing with latency.
func (m *Metrics) RecordEvent(latencyNs int64) {
	m.eventsProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	Ticks                uint64
	UpdatesEmitted       uint64
	UpdatesApplied       uint64
	UpdatesIgnored       uint64
	FetchesTotal         uint64
	FetchFailures        uint64
	StaleFetches         uint64
	NotificationsEvicted uint64
	EventsProcessed      uint64
	ErrorsTotal          uint64
	AvgLatencyNs         int64
	Timestamp            time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		Ticks:                m.ticks.Load(),
		UpdatesEmitted:       m.updatesEmitted.Load(),
		UpdatesApplied:       m.updatesApplied.Load(),
		UpdatesIgnored:       m.updatesIgnored.Load(),
		FetchesTotal:         m.fetchesTotal.Load(),
		FetchFailures:        m.fetchFailures.Load(),
		StaleFetches:         m.staleFetches.Load(),
		NotificationsEvicted: m.notificationsEvicted.Load(),
		EventsProcessed:      m.eventsProcessed.Load(),
		ErrorsTotal:          m.errorsTotal.Load(),
		AvgLatencyNs:         avgLatency,
		Timestamp:            time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticks.Store(0)
	m.updatesEmitted.Store(0)
	m.updatesApplied.Store(0)
	m.updatesIgnored.Store(0)
	m.fetchesTotal.Store(0)
	m.fetchFailures.Store(0)
	m.staleFetches.Store(0)
	m.notificationsEvicted.Store(0)
	m.eventsProcessed.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
}
