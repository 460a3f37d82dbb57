package reportstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run status values stored in the status column.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Prompt source values stored in the prompt_source column.
// "store" means the system prompt came from the prompt store;
// "fallback" means the store was unreachable and the request was
// sent with the document content alone.
const (
	PromptSourceStore    = "store"
	PromptSourceFallback = "fallback"
)

// ReportRun represents a record in the report_runs table.
// One row is written per pipeline run, successful or not, capturing
// the prompt provenance, token accounting, and stage timings.
type ReportRun struct {
	ID               int64     // Auto-incremented primary key
	CorrelationID    string    // Unique identifier tracing one pipeline run
	SourceFile       string    // Path of the PDF that was processed
	ReportPath       string    // Path of the written report, empty on failure
	Status           string    // Status: "pending", "success", "error"
	PromptSource     string    // Where the system prompt came from: "store", "fallback"
	PromptName       string    // Prompt store name, empty on fallback
	PromptVersion    int       // Prompt store version, 0 on fallback
	Language         string    // Report language the prompt was compiled for
	Model            string    // Name of the model used
	NumElements      int       // Number of content elements extracted
	FileSizeMB       float64   // Source file size in megabytes
	ContentTokens    int       // Token count of the prepared content
	SystemTokens     int       // Token count of the system prompt
	Truncated        bool      // Whether content was truncated to fit the context window
	TruncationPath   string    // Truncation strategy taken, empty when not truncated
	PromptTokens     int       // Input tokens reported by the model
	CompletionTokens int       // Output tokens reported by the model
	TotalTokens      int       // Total tokens reported by the model
	ExtractMS        int       // Extraction stage duration in milliseconds
	LLMMS            int       // Model completion duration in milliseconds
	TotalMS          int       // End-to-end run duration in milliseconds
	ErrorMessage     string    // Error message if status is "error"
	CreatedAt        time.Time // Timestamp when record was created
}

// runColumns is the SELECT list shared by the query methods.
// Nullable columns are coalesced so rows scan into plain Go types.
const runColumns = `id, correlation_id, source_file, COALESCE(report_path, ''), status,
	   COALESCE(prompt_source, ''), COALESCE(prompt_name, ''), COALESCE(prompt_version, 0),
	   COALESCE(language, ''), COALESCE(model, ''),
	   COALESCE(num_elements, 0), COALESCE(file_size_mb, 0),
	   COALESCE(content_tokens, 0), COALESCE(system_tokens, 0),
	   truncated, COALESCE(truncation_path, ''),
	   COALESCE(prompt_tokens, 0), COALESCE(completion_tokens, 0), COALESCE(total_tokens, 0),
	   COALESCE(extract_ms, 0), COALESCE(llm_ms, 0), COALESCE(total_ms, 0),
	   COALESCE(error_message, ''), created_at`

// Repository provides CRUD operations for the report_runs table.
// It wraps a Store instance and provides type-safe methods for
// inserting and querying run records.
//
// The Repository is designed to work with both synchronous and
// asynchronous writes via the AsyncWriter.
type Repository struct {
	store       *Store
	asyncWriter *AsyncWriter
}

// NewRepository creates a new Repository instance.
// The asyncWriter parameter is optional; if nil, all writes will be synchronous.
func NewRepository(store *Store, asyncWriter *AsyncWriter) *Repository {
	return &Repository{
		store:       store,
		asyncWriter: asyncWriter,
	}
}

// InsertRun inserts a report run record.
// If an asyncWriter is configured, the write is queued asynchronously.
// Returns the inserted record ID (0 for async writes).
func (r *Repository) InsertRun(ctx context.Context, run ReportRun) (int64, error) {
	if r.store == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	query := `
		INSERT INTO report_runs (
			correlation_id, source_file, report_path, status,
			prompt_source, prompt_name, prompt_version, language, model,
			num_elements, file_size_mb, content_tokens, system_tokens,
			truncated, truncation_path,
			prompt_tokens, completion_tokens, total_tokens,
			extract_ms, llm_ms, total_ms, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	args := []interface{}{
		run.CorrelationID,
		run.SourceFile,
		nullString(run.ReportPath),
		run.Status,
		nullString(run.PromptSource),
		nullString(run.PromptName),
		run.PromptVersion,
		nullString(run.Language),
		nullString(run.Model),
		run.NumElements,
		run.FileSizeMB,
		run.ContentTokens,
		run.SystemTokens,
		boolToInt(run.Truncated),
		nullString(run.TruncationPath),
		run.PromptTokens,
		run.CompletionTokens,
		run.TotalTokens,
		run.ExtractMS,
		run.LLMMS,
		run.TotalMS,
		nullString(run.ErrorMessage),
	}

	// Use async writer if available
	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		op := asyncInsertOp{
			query: query,
			args:  args,
		}
		if r.asyncWriter.Write(op) {
			return 0, nil // Async write queued successfully
		}
		// Fall through to sync write if channel is full
	}

	// Synchronous write
	result, err := r.store.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// QueryRecentRuns retrieves the most recent report runs.
// Results are ordered by created_at DESC.
func (r *Repository) QueryRecentRuns(ctx context.Context, limit int) ([]ReportRun, error) {
	if r.store == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if limit <= 0 {
		limit = 10 // Default limit
	}

	query := `
		SELECT ` + runColumns + `
		FROM report_runs
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.store.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// QueryRunsByStatus retrieves report runs filtered by status.
// Results are ordered by created_at DESC.
func (r *Repository) QueryRunsByStatus(ctx context.Context, status string, limit int) ([]ReportRun, error) {
	if r.store == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT ` + runColumns + `
		FROM report_runs
		WHERE status = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.store.Query(query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// QueryRunsByCorrelationID retrieves report runs for a specific correlation ID.
func (r *Repository) QueryRunsByCorrelationID(ctx context.Context, correlationID string) ([]ReportRun, error) {
	if r.store == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT ` + runColumns + `
		FROM report_runs
		WHERE correlation_id = ?
		ORDER BY created_at DESC`

	rows, err := r.store.Query(query, correlationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// collectRuns scans all rows into ReportRun values.
func collectRuns(rows *sql.Rows) ([]ReportRun, error) {
	var runs []ReportRun
	for rows.Next() {
		var run ReportRun
		var truncated int
		var createdAt string

		err := rows.Scan(
			&run.ID,
			&run.CorrelationID,
			&run.SourceFile,
			&run.ReportPath,
			&run.Status,
			&run.PromptSource,
			&run.PromptName,
			&run.PromptVersion,
			&run.Language,
			&run.Model,
			&run.NumElements,
			&run.FileSizeMB,
			&run.ContentTokens,
			&run.SystemTokens,
			&truncated,
			&run.TruncationPath,
			&run.PromptTokens,
			&run.CompletionTokens,
			&run.TotalTokens,
			&run.ExtractMS,
			&run.LLMMS,
			&run.TotalMS,
			&run.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report run row: %w", err)
		}

		run.Truncated = truncated != 0
		// Parse SQLite datetime
		run.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report run rows: %w", err)
	}

	return runs, nil
}

// CountRuns returns the total count of report run records.
func (r *Repository) CountRuns(ctx context.Context) (int64, error) {
	if r.store == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var count int64
	err := r.store.QueryRow("SELECT COUNT(*) FROM report_runs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count report runs: %w", err)
	}

	return count, nil
}

// CountRunsByStatus returns the count of report runs with the given status.
func (r *Repository) CountRunsByStatus(ctx context.Context, status string) (int64, error) {
	if r.store == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var count int64
	err := r.store.QueryRow("SELECT COUNT(*) FROM report_runs WHERE status = ?", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count report runs: %w", err)
	}

	return count, nil
}

// asyncInsertOp is an internal type for async insert operations.
type asyncInsertOp struct {
	query string
	args  []interface{}
}

// CreateAsyncWriteHandler creates a WriteHandler for the Repository.
// This handler processes asyncInsertOp operations.
func (r *Repository) CreateAsyncWriteHandler() WriteHandler {
	return func(op WriteOperation) error {
		insertOp, ok := op.Data.(asyncInsertOp)
		if !ok {
			return fmt.Errorf("invalid operation type: expected asyncInsertOp")
		}

		_, err := r.store.Exec(insertOp.query, insertOp.args...)
		return err
	}
}

// nullString converts an empty string to sql.NullString for NULL storage.
func nullString(s string) interface{} {
	if s == "" {
		return sql.NullString{String: "", Valid: false}
	}
	return s
}

// boolToInt converts a bool to the 0/1 form SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
