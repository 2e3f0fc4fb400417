package infra

import (
	"testing"
)

func TestMetrics_RecordPoll(t *testing.T) {
	m := &Metrics{}

	m.RecordPoll(1000)
	m.RecordPoll(2000)
	m.RecordPoll(3000)

	snap := m.Snapshot()

	if snap.PollsTotal != 3 {
		t.Errorf("Expected 3 polls, got %d", snap.PollsTotal)
	}

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgLatencyNs != 2000 {
		t.Errorf("Expected avg latency 2000, got %d", snap.AvgLatencyNs)
	}
}

func TestMetrics_IngestAndSkip(t *testing.T) {
	m := &Metrics{}

	m.RecordIngest()
	m.RecordIngest()
	m.RecordSkip()

	snap := m.Snapshot()
	if snap.QuotesIngested != 2 {
		t.Errorf("Expected 2 ingested, got %d", snap.QuotesIngested)
	}
	if snap.QuotesSkipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", snap.QuotesSkipped)
	}
}

func TestMetrics_Clients(t *testing.T) {
	m := &Metrics{}

	m.IncrementClients()
	m.IncrementClients()
	m.IncrementClients()

	snap := m.Snapshot()
	if snap.ActiveClients != 3 {
		t.Errorf("Expected 3 clients, got %d", snap.ActiveClients)
	}

	m.DecrementClients()
	snap = m.Snapshot()
	if snap.ActiveClients != 2 {
		t.Errorf("Expected 2 clients, got %d", snap.ActiveClients)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordPoll(1000)
	m.RecordError()
	m.RecordSymbolChange()
	m.IncrementClients()

	m.Reset()
	snap := m.Snapshot()

	if snap.PollsTotal != 0 {
		t.Error("Expected 0 polls after reset")
	}
	if snap.ErrorsTotal != 0 {
		t.Error("Expected 0 errors after reset")
	}
	if snap.SymbolChanges != 0 {
		t.Error("Expected 0 symbol changes after reset")
	}
	if snap.ActiveClients != 0 {
		t.Error("Expected 0 clients after reset")
	}
}
