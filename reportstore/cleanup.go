package reportstore

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult contains statistics about a cleanup operation.
type CleanupResult struct {
	// RunsDeleted is the number of records deleted from report_runs
	RunsDeleted int64
	// Duration is how long the cleanup took
	Duration time.Duration
}

// Cleanup deletes report runs older than retentionDays and runs VACUUM
// to reclaim disk space.
//
// This method is thread-safe and uses a transaction to ensure atomicity.
// If the deletion fails, the operation is rolled back.
//
// Example:
//
//	result, err := store.Cleanup(30) // Delete runs older than 30 days
//	if err != nil {
//	    log.Printf("Cleanup failed: %v", err)
//	}
//	log.Printf("Cleaned up %d runs", result.RunsDeleted)
func (s *Store) Cleanup(retentionDays int) (CleanupResult, error) {
	return s.CleanupWithContext(context.Background(), retentionDays)
}

// CleanupWithContext deletes report runs older than retentionDays,
// respecting context cancellation.
//
// This is the context-aware version of Cleanup. It will return early if the
// context is cancelled, rolling back any pending changes.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
//	defer cancel()
//
//	result, err := store.CleanupWithContext(ctx, 30)
//	if err != nil {
//	    if ctx.Err() != nil {
//	        log.Printf("Cleanup cancelled: %v", ctx.Err())
//	    } else {
//	        log.Printf("Cleanup failed: %v", err)
//	    }
//	}
func (s *Store) CleanupWithContext(ctx context.Context, retentionDays int) (CleanupResult, error) {
	start := time.Now()
	result := CleanupResult{}

	if retentionDays < 0 {
		return result, fmt.Errorf("retentionDays must be non-negative, got %d", retentionDays)
	}

	// Check context before starting
	select {
	case <-ctx.Done():
		return result, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return result, fmt.Errorf("database connection is closed")
	}

	// Begin transaction
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback() // No-op if already committed
		}
	}()

	// SQLite datetime comparison: datetime('now', '-N days')
	query := fmt.Sprintf(
		"DELETE FROM report_runs WHERE created_at < datetime('now', '-%d days')",
		retentionDays,
	)

	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		return result, fmt.Errorf("failed to delete from report_runs: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return result, fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Commit the transaction
	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil // Prevent rollback in defer

	result.RunsDeleted = rowsAffected

	// Check context before VACUUM
	select {
	case <-ctx.Done():
		// Transaction committed, but VACUUM not run - acceptable partial success
		result.Duration = time.Since(start)
		return result, ctx.Err()
	default:
	}

	// Run VACUUM to reclaim disk space (must be outside transaction)
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		// VACUUM failure is not critical - data was already deleted
		result.Duration = time.Since(start)
		return result, fmt.Errorf("cleanup succeeded but VACUUM failed: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// CleanupSchedulerConfig holds configuration for the cleanup scheduler.
type CleanupSchedulerConfig struct {
	// RetentionDays is the number of days to retain run records
	RetentionDays int
	// Interval is how often to run cleanup
	Interval time.Duration
	// OnCleanup is called after each cleanup run (optional)
	// Useful for logging or metrics
	OnCleanup func(result CleanupResult, err error)
}

// DefaultCleanupSchedulerConfig returns sensible defaults for the cleanup scheduler.
func DefaultCleanupSchedulerConfig() CleanupSchedulerConfig {
	return CleanupSchedulerConfig{
		RetentionDays: 30,
		Interval:      24 * time.Hour,
		OnCleanup:     nil,
	}
}

// StartCleanupScheduler starts a background goroutine that periodically runs cleanup.
//
// The scheduler runs cleanup at the specified interval and stops when the context
// is cancelled. It runs an initial cleanup immediately, then subsequent cleanups
// at each interval.
//
// Example:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	// Run cleanup every 24 hours, keeping 30 days of runs
//	store.StartCleanupScheduler(ctx, 30, 24*time.Hour)
//
//	// Later, to stop the scheduler:
//	cancel()
func (s *Store) StartCleanupScheduler(ctx context.Context, retentionDays int, interval time.Duration) {
	config := CleanupSchedulerConfig{
		RetentionDays: retentionDays,
		Interval:      interval,
		OnCleanup:     nil,
	}
	s.StartCleanupSchedulerWithConfig(ctx, config)
}

// StartCleanupSchedulerWithConfig starts a cleanup scheduler with custom configuration.
//
// This version allows specifying a callback for cleanup results, useful for
// logging or monitoring.
//
// Example:
//
//	config := reportstore.CleanupSchedulerConfig{
//	    RetentionDays: 30,
//	    Interval:      24 * time.Hour,
//	    OnCleanup: func(result reportstore.CleanupResult, err error) {
//	        if err != nil {
//	            log.Printf("Cleanup error: %v", err)
//	        } else {
//	            log.Printf("Cleanup deleted %d runs in %v", result.RunsDeleted, result.Duration)
//	        }
//	    },
//	}
//	store.StartCleanupSchedulerWithConfig(ctx, config)
func (s *Store) StartCleanupSchedulerWithConfig(ctx context.Context, config CleanupSchedulerConfig) {
	go func() {
		// Run initial cleanup immediately
		result, err := s.CleanupWithContext(ctx, config.RetentionDays)
		if config.OnCleanup != nil {
			config.OnCleanup(result, err)
		}

		// Set up ticker for periodic cleanup
		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err := s.CleanupWithContext(ctx, config.RetentionDays)
				if config.OnCleanup != nil {
					config.OnCleanup(result, err)
				}
			}
		}
	}()
}
