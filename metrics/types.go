// Package metrics provides pure data types for the run metrics system.
// This file contains atom-level type definitions with no behavior.
package metrics

import "time"

// RunRecord represents a single report pipeline run.
// This is a pure data structure for tracking individual PDF-to-report executions.
type RunRecord struct {
	// ID is the correlation ID for this run
	ID string `json:"id"`

	// SourceFile is the PDF the run processed
	SourceFile string `json:"source_file"`

	// Model is the chat model the run targeted
	Model string `json:"model"`

	// PromptSource records where the system prompt came from: "store" or
	// "fallback" (empty if the run failed before prompt resolution)
	PromptSource string `json:"prompt_source,omitempty"`

	// Status indicates the final state: "success", "error", "processing"
	Status string `json:"status"`

	// Truncated indicates the document content was cut to fit the token budget
	Truncated bool `json:"truncated"`

	// ContentTokens is the token count of the prepared document content
	ContentTokens int `json:"content_tokens"`

	// PromptTokens is the API-reported input token count
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the API-reported output token count
	CompletionTokens int `json:"completion_tokens"`

	// LLMDuration is the wall-clock time of the completion call
	LLMDuration time.Duration `json:"llm_duration"`

	// StartTime is when the run began
	StartTime time.Time `json:"start_time"`

	// EndTime is when the run completed (zero value if still processing)
	EndTime time.Time `json:"end_time,omitempty"`

	// Duration is the total run time
	Duration time.Duration `json:"duration"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`

	// ReportPath is where the generated report was written
	ReportPath string `json:"report_path,omitempty"`
}

// WatcherStatus represents the state of the uploads-directory watcher.
// This is a pure data structure with no behavior.
type WatcherStatus struct {
	// UploadsDir is the directory being watched
	UploadsDir string `json:"uploads_dir"`

	// Running indicates if the watcher loop is active
	Running bool `json:"running"`

	// LastScan is the timestamp of the most recent directory scan
	LastScan time.Time `json:"last_scan"`

	// FilesProcessed is the count of PDFs handed to the pipeline
	FilesProcessed int64 `json:"files_processed"`

	// FilesSkipped is the count of files ignored (non-PDF, oversized, already seen)
	FilesSkipped int64 `json:"files_skipped"`

	// LastFile is the most recently processed file name
	LastFile string `json:"last_file,omitempty"`
}

// SystemStatus represents the overall system health and status.
// This is a pure data structure with no behavior.
type SystemStatus struct {
	// Health indicates the system state: "running", "error", "stopped"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Uptime is the duration since the application started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time `json:"last_check"`
}

// RunMetrics represents aggregated pipeline run statistics.
// This is a pure data structure with no behavior.
type RunMetrics struct {
	// TotalRuns is the total number of runs recorded
	TotalRuns int64 `json:"total_runs"`

	// TotalSuccess is the count of successfully completed runs
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of failed runs
	TotalErrors int64 `json:"total_errors"`

	// FallbackRuns is the count of runs that used the fallback prompt path
	FallbackRuns int64 `json:"fallback_runs"`

	// TruncatedRuns is the count of runs whose content was cut to fit the budget
	TruncatedRuns int64 `json:"truncated_runs"`

	// PromptTokens is the lifetime sum of API-reported input tokens
	PromptTokens int64 `json:"prompt_tokens"`

	// CompletionTokens is the lifetime sum of API-reported output tokens
	CompletionTokens int64 `json:"completion_tokens"`

	// AvgLLMDuration is the average completion call time across runs that
	// reached the LLM
	AvgLLMDuration time.Duration `json:"avg_llm_duration"`

	// BySource contains per-prompt-source statistics
	BySource map[string]*SourceMetrics `json:"by_source"`
}

// SourceMetrics represents statistics for a specific prompt source.
// This is a pure data structure with no behavior.
type SourceMetrics struct {
	// Count is the total number of runs using this prompt source
	Count int64 `json:"count"`

	// SuccessRate is the percentage of successful runs (0-100)
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the average run time for this prompt source
	AvgDuration time.Duration `json:"avg_duration"`
}

// Status constants for RunRecord
const (
	RunStatusSuccess    = "success"
	RunStatusError      = "error"
	RunStatusProcessing = "processing"
)

// Prompt source constants for RunRecord
const (
	PromptSourceStore    = "store"
	PromptSourceFallback = "fallback"
)

// Health constants for SystemStatus
const (
	SystemHealthRunning = "running"
	SystemHealthError   = "error"
	SystemHealthStopped = "stopped"
)
