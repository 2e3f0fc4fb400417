package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	pollsTotal     atomic.Uint64
	quotesIngested atomic.Uint64
	quotesSkipped  atomic.Uint64
	errorsTotal    atomic.Uint64
	symbolChanges  atomic.Uint64

	// Vendor round-trip latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeClients atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordPoll records one completed vendor poll with its round-trip latency.
func (m *Metrics) RecordPoll(latencyNs int64) {
	m.pollsTotal.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordIngest records a quote accepted into the chart window.
func (m *Metrics) RecordIngest() {
	m.quotesIngested.Add(1)
}

// RecordSkip records a quote dropped without plotting (stale or no data).
func (m *Metrics) RecordSkip() {
	m.quotesSkipped.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordSymbolChange records a watched-ticker switch.
func (m *Metrics) RecordSymbolChange() {
	m.symbolChanges.Add(1)
}

// IncrementClients increments connected dashboard clients by 1.
func (m *Metrics) IncrementClients() {
	m.activeClients.Add(1)
}

// DecrementClients decrements connected dashboard clients by 1.
func (m *Metrics) DecrementClients() {
	m.activeClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	PollsTotal     uint64
	QuotesIngested uint64
	QuotesSkipped  uint64
	ErrorsTotal    uint64
	SymbolChanges  uint64
	AvgLatencyNs   int64
	ActiveClients  int32
	Timestamp      time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		PollsTotal:     m.pollsTotal.Load(),
		QuotesIngested: m.quotesIngested.Load(),
		QuotesSkipped:  m.quotesSkipped.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		SymbolChanges:  m.symbolChanges.Load(),
		AvgLatencyNs:   avgLatency,
		ActiveClients:  m.activeClients.Load(),
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.pollsTotal.Store(0)
	m.quotesIngested.Store(0)
	m.quotesSkipped.Store(0)
	m.errorsTotal.Store(0)
	m.symbolChanges.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeClients.Store(0)
}
