// Package metrics provides the MetricsStore organism for in-memory metrics storage.
// This file contains the MetricsStore which implements the MetricsCollector interface.
package metrics

import (
	"sync"
	"time"
)

// MetricsStore is an in-memory storage organism for pipeline run metrics.
// It implements the MetricsCollector interface and provides thread-safe
// access to run records, aggregate counters, and watcher status.
//
// This is an organism-level component that composes:
// - a circular buffer for run history
// - sync.RWMutex for thread-safety
// - metrics types (RunRecord, RunMetrics, WatcherStatus, SystemStatus)
//
// Usage:
//
//	store := NewMetricsStore(DefaultStoreConfig(), time.Now())
//	store.RecordRun(run)
//	summary := store.GetRunMetrics()
type MetricsStore struct {
	mu sync.RWMutex

	// Run tracking
	runHistory []RunRecord // Circular buffer of recent runs
	runCap     int         // Maximum runs to retain
	runHead    int         // Write index
	runSize    int         // Current number of runs

	// Run aggregation
	totalRuns        int64
	totalSuccess     int64
	totalErrors      int64
	fallbackRuns     int64
	truncatedRuns    int64
	promptTokens     int64
	completionTokens int64
	llmCalls         int64
	llmDuration      time.Duration
	bySource         map[string]*sourceStats // Per-prompt-source statistics

	// Watcher status (latest snapshot)
	watcherStatus WatcherStatus
	watcherSeen   bool

	// System metadata
	startTime time.Time
	version   string
}

// sourceStats holds per-prompt-source aggregation data
type sourceStats struct {
	count         int64
	successCount  int64
	totalDuration time.Duration
}

// StoreConfig configures the MetricsStore behavior.
type StoreConfig struct {
	// RunHistoryCapacity is the max number of runs to retain in history
	RunHistoryCapacity int
	// Version is the application version string
	Version string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		RunHistoryCapacity: 100,
		Version:            "0.0.0",
	}
}

// NewMetricsStore creates a new MetricsStore with the specified configuration.
// The startTime is used to calculate uptime.
func NewMetricsStore(config StoreConfig, startTime time.Time) *MetricsStore {
	cap := config.RunHistoryCapacity
	if cap < 1 {
		cap = 100
	}

	return &MetricsStore{
		runHistory: make([]RunRecord, cap),
		runCap:     cap,
		runHead:    0,
		runSize:    0,
		bySource:   make(map[string]*sourceStats),
		startTime:  startTime,
		version:    config.Version,
	}
}

// RecordRun logs a completed pipeline run.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) RecordRun(run RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Add to circular buffer
	s.runHistory[s.runHead] = run
	s.runHead = (s.runHead + 1) % s.runCap
	if s.runSize < s.runCap {
		s.runSize++
	}

	// Update aggregations
	s.totalRuns++

	if run.Status == RunStatusSuccess {
		s.totalSuccess++
	} else if run.Status == RunStatusError {
		s.totalErrors++
	}

	if run.PromptSource == PromptSourceFallback {
		s.fallbackRuns++
	}
	if run.Truncated {
		s.truncatedRuns++
	}

	s.promptTokens += int64(run.PromptTokens)
	s.completionTokens += int64(run.CompletionTokens)

	// Runs that fail before the completion call carry no LLM duration and
	// must not drag the average down
	if run.LLMDuration > 0 {
		s.llmCalls++
		s.llmDuration += run.LLMDuration
	}

	// Update per-source stats
	if run.PromptSource != "" {
		stats, ok := s.bySource[run.PromptSource]
		if !ok {
			stats = &sourceStats{}
			s.bySource[run.PromptSource] = stats
		}
		stats.count++
		if run.Status == RunStatusSuccess {
			stats.successCount++
		}
		stats.totalDuration += run.Duration
	}
}

// GetRunMetrics returns aggregated run statistics.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) GetRunMetrics() RunMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := RunMetrics{
		TotalRuns:        s.totalRuns,
		TotalSuccess:     s.totalSuccess,
		TotalErrors:      s.totalErrors,
		FallbackRuns:     s.fallbackRuns,
		TruncatedRuns:    s.truncatedRuns,
		PromptTokens:     s.promptTokens,
		CompletionTokens: s.completionTokens,
		BySource:         make(map[string]*SourceMetrics),
	}

	if s.llmCalls > 0 {
		metrics.AvgLLMDuration = s.llmDuration / time.Duration(s.llmCalls)
	}

	for source, stats := range s.bySource {
		var successRate float64
		if stats.count > 0 {
			successRate = float64(stats.successCount) / float64(stats.count) * 100
		}

		var avgDuration time.Duration
		if stats.count > 0 {
			avgDuration = stats.totalDuration / time.Duration(stats.count)
		}

		metrics.BySource[source] = &SourceMetrics{
			Count:       stats.count,
			SuccessRate: successRate,
			AvgDuration: avgDuration,
		}
	}

	return metrics
}

// GetRecentRuns returns the N most recent run records.
// If limit exceeds available runs, all available are returned.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) GetRecentRuns(limit int) []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.runSize == 0 {
		return []RunRecord{}
	}

	if limit > s.runSize {
		limit = s.runSize
	}

	// Calculate the starting index for the most recent 'limit' items
	result := make([]RunRecord, limit)
	for i := 0; i < limit; i++ {
		// Work backwards from head to get most recent first
		idx := (s.runHead - limit + i + s.runCap) % s.runCap
		result[i] = s.runHistory[idx]
	}

	return result
}

// UpdateWatcherStatus updates the uploads-directory watcher snapshot.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) UpdateWatcherStatus(status WatcherStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherStatus = status
	s.watcherSeen = true
}

// GetWatcherStatus returns the current watcher status.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) GetWatcherStatus() WatcherStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watcherStatus
}

// GetSystemStatus returns the overall system health status.
// This implements part of the MetricsCollector interface.
func (s *MetricsStore) GetSystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// A watcher that registered itself but is no longer running means the
	// pipeline has gone quiet unexpectedly
	health := SystemHealthRunning
	if s.watcherSeen && !s.watcherStatus.Running {
		health = SystemHealthError
	}

	return SystemStatus{
		Health:    health,
		Version:   s.version,
		Uptime:    time.Since(s.startTime),
		LastCheck: time.Now(),
	}
}

// Verify MetricsStore implements MetricsCollector interface
var _ MetricsCollector = (*MetricsStore)(nil)
