package shutdown

import (
	"context"
	"os"
	"path/filepath"

	"paperpitch/core"

	"go.uber.org/zap"
)

// CleanupEmptyReports returns a shutdown function that removes zero-byte
// report files from the reports directory. A run killed between claiming a
// report index and writing the body leaves an empty report_N.md behind, and
// that file blocks its index for every future run.
//
// Priority recommendation: 40+ (final cleanup, after the store is closed)
//
// The cleanup function:
//   - Removes zero-byte files matching "report_*.md" in the reports directory
//   - Never touches report files with content
//   - Continues cleanup even if individual removals fail
//   - Returns nil to avoid blocking shutdown (errors are logged)
//
// Usage:
//
//	manager.Register("cleanup-reports", 45, shutdown.CleanupEmptyReports(logger, cfg.ReportsDir))
func CleanupEmptyReports(logger *zap.Logger, reportsDir string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		return removeEmptyReports(ctx, logger, reportsDir)
	}
}

// CleanupEmptyReportsAndDir returns a shutdown function that removes
// zero-byte report files AND the reports directory itself when nothing is
// left in it. Use this when the reports directory should not outlive the
// process unless it actually holds reports; it is recreated on the next run.
//
// Priority recommendation: 45+ (very final cleanup)
//
// Usage:
//
//	manager.Register("cleanup-reports-dir", 50, shutdown.CleanupEmptyReportsAndDir(logger, cfg.ReportsDir))
func CleanupEmptyReportsAndDir(logger *zap.Logger, reportsDir string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		// First clean up empty report files
		if err := removeEmptyReports(ctx, logger, reportsDir); err != nil {
			// Log but continue - we still want to try removing the directory
			logger.Warn("Error during empty report cleanup, continuing with directory removal",
				zap.Error(err),
			)
		}

		// Check context before the directory removal
		select {
		case <-ctx.Done():
			logger.Warn("Shutdown context cancelled, skipping directory removal")
			return nil
		default:
		}

		// Then remove the directory if it is empty
		return removeReportsDirIfEmpty(logger, reportsDir)
	}
}

// removeEmptyReports deletes zero-byte files matching "report_*.md" in the
// reports directory. It returns nil even if some files fail to delete
// (errors are logged).
func removeEmptyReports(ctx context.Context, logger *zap.Logger, reportsDir string) error {
	logger.Debug("Starting empty report cleanup",
		zap.String("directory", reportsDir),
	)

	pattern := filepath.Join(reportsDir, "report_*.md")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		logger.Error("Failed to list report files",
			zap.String("pattern", pattern),
			zap.Error(err),
		)
		// Return nil to not block shutdown
		return nil
	}

	if len(matches) == 0 {
		logger.Debug("No report files to inspect")
		return nil
	}

	var removedCount int
	var failedCount int

	for _, match := range matches {
		// Check context between file deletions
		select {
		case <-ctx.Done():
			logger.Warn("Shutdown context cancelled during cleanup",
				zap.Int("removed", removedCount),
			)
			return nil
		default:
		}

		info, err := os.Stat(match)
		if err != nil || info.IsDir() || info.Size() > 0 {
			continue
		}

		if err := os.Remove(match); err != nil {
			failedCount++
			logger.Warn("Failed to remove empty report",
				zap.String("file", filepath.Base(match)),
				zap.Error(err),
			)
		} else {
			removedCount++
			logger.Debug("Removed empty report",
				zap.String("file", filepath.Base(match)),
			)
		}
	}

	if removedCount > 0 || failedCount > 0 {
		logger.Info("Empty report cleanup complete",
			zap.Int("removed", removedCount),
			zap.Int("failed", failedCount),
		)
	}

	return nil
}

// removeReportsDirIfEmpty removes the reports directory when it contains
// nothing. A directory that still holds files is left alone (os.Remove does
// not delete non-empty directories). It returns nil if the directory does
// not exist.
func removeReportsDirIfEmpty(logger *zap.Logger, reportsDir string) error {
	// Check if directory exists
	info, err := os.Stat(reportsDir)
	if os.IsNotExist(err) {
		logger.Debug("Reports directory does not exist, nothing to remove",
			zap.String("directory", reportsDir),
		)
		return nil
	}
	if err != nil {
		logger.Error("Failed to stat reports directory",
			zap.String("directory", reportsDir),
			zap.Error(err),
		)
		// Return nil to not block shutdown
		return nil
	}

	if !info.IsDir() {
		logger.Warn("Reports path is not a directory",
			zap.String("path", reportsDir),
		)
		return nil
	}

	if err := os.Remove(reportsDir); err != nil {
		logger.Debug("Reports directory not empty, leaving it in place",
			zap.String("directory", reportsDir),
		)
		return nil
	}

	logger.Info("Removed empty reports directory",
		zap.String("directory", reportsDir),
	)

	return nil
}
