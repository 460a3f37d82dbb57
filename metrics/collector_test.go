package metrics

import (
	"sync"
	"testing"
	"time"
)

// MockCollector is a simple in-memory implementation of MetricsCollector for testing.
// This validates that the interface can be implemented and used correctly.
type MockCollector struct {
	mu            sync.RWMutex
	runs          []RunRecord
	runMetrics    RunMetrics
	watcherStatus WatcherStatus
	systemStatus  SystemStatus
}

// NewMockCollector creates a new mock collector for testing.
func NewMockCollector() *MockCollector {
	return &MockCollector{
		runs: make([]RunRecord, 0),
		runMetrics: RunMetrics{
			BySource: make(map[string]*SourceMetrics),
		},
	}
}

func (m *MockCollector) RecordRun(run RunRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
}

func (m *MockCollector) GetRunMetrics() RunMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runMetrics
}

func (m *MockCollector) GetRecentRuns(limit int) []RunRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.runs) <= limit {
		result := make([]RunRecord, len(m.runs))
		copy(result, m.runs)
		return result
	}

	start := len(m.runs) - limit
	result := make([]RunRecord, limit)
	copy(result, m.runs[start:])
	return result
}

func (m *MockCollector) UpdateWatcherStatus(status WatcherStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watcherStatus = status
}

func (m *MockCollector) GetWatcherStatus() WatcherStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.watcherStatus
}

func (m *MockCollector) GetSystemStatus() SystemStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.systemStatus
}

// TestMetricsCollectorInterface verifies that MockCollector implements MetricsCollector.
func TestMetricsCollectorInterface(t *testing.T) {
	var _ MetricsCollector = (*MockCollector)(nil)
}

// TestMockRecordRun verifies run recording through the interface.
func TestMockRecordRun(t *testing.T) {
	var collector MetricsCollector = NewMockCollector()

	collector.RecordRun(RunRecord{
		ID:           "run-1",
		SourceFile:   "paper.pdf",
		PromptSource: PromptSourceStore,
		Status:       RunStatusSuccess,
		StartTime:    time.Now(),
		EndTime:      time.Now().Add(time.Second),
		Duration:     time.Second,
	})
	collector.RecordRun(RunRecord{ID: "run-2", Status: RunStatusError})

	runs := collector.GetRecentRuns(10)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-1" {
		t.Errorf("expected first run 'run-1', got '%s'", runs[0].ID)
	}
}

// TestMockRecentRunsLimit verifies the limit is honored through the interface.
func TestMockRecentRunsLimit(t *testing.T) {
	var collector MetricsCollector = NewMockCollector()

	collector.RecordRun(RunRecord{ID: "run-1"})
	collector.RecordRun(RunRecord{ID: "run-2"})
	collector.RecordRun(RunRecord{ID: "run-3"})

	runs := collector.GetRecentRuns(2)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" || runs[1].ID != "run-3" {
		t.Errorf("expected the most recent runs, got %s, %s", runs[0].ID, runs[1].ID)
	}
}
