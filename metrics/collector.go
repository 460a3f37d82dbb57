// Package metrics provides the MetricsCollector interface for aggregating metrics.
// This is a molecule that composes the atom-level types from types.go.
package metrics

// MetricsCollector defines the interface for collecting metrics from the
// report pipeline. It aggregates RunRecord and WatcherStatus atoms to provide
// a unified interface for metric collection.
//
// Implementation strategy:
// - Implementations should aggregate data from pipeline runs and the watcher
// - Methods should be concurrency-safe
// - Zero values should be returned for unavailable metrics
type MetricsCollector interface {
	// RecordRun logs a completed pipeline run.
	// Aggregates RunRecord atoms into the metrics system.
	RecordRun(run RunRecord)

	// GetRunMetrics returns aggregated run statistics.
	// Composes multiple RunRecord atoms into a RunMetrics summary.
	GetRunMetrics() RunMetrics

	// GetRecentRuns returns the N most recent run records.
	// Provides access to individual RunRecord atoms.
	GetRecentRuns(limit int) []RunRecord

	// UpdateWatcherStatus updates the uploads-directory watcher snapshot.
	// Records the current WatcherStatus atom state.
	UpdateWatcherStatus(status WatcherStatus)

	// GetWatcherStatus returns the current watcher status.
	// Retrieves the latest WatcherStatus atom.
	GetWatcherStatus() WatcherStatus

	// GetSystemStatus returns the overall system health status.
	// Composes a SystemStatus atom from collected metrics.
	GetSystemStatus() SystemStatus
}
