package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"paperpitch/core"
	"paperpitch/metrics"
	"paperpitch/reportbuilder"
	"paperpitch/shutdown"

	"go.uber.org/zap"
)

// ReportRunner runs the report pipeline for one PDF. *reportbuilder.Builder
// implements it.
type ReportRunner interface {
	Build(ctx context.Context, pdfPath string) (*reportbuilder.BuildResult, error)
}

// fileKey identifies one observed upload. Name and modification time
// together mean a re-uploaded file is processed again while an already
// handled one is not.
type fileKey struct {
	name    string
	modTime int64
}

// fileState is the size and mtime snapshot used to detect settled files.
type fileState struct {
	size    int64
	modTime int64
}

// Watcher polls the uploads directory and feeds each new PDF through the
// report pipeline exactly once. Runs are serialized: one PDF at a time, in
// directory order, each wrapped as a tracked operation so graceful
// shutdown waits for the run in flight.
//
// Watcher is not safe for concurrent use; Run owns all of its state.
type Watcher struct {
	config  *core.Config
	runner  ReportRunner
	manager *shutdown.Manager
	metrics metrics.MetricsCollector
	logger  *zap.Logger

	processed map[fileKey]struct{}
	pending   map[string]fileState
	status    metrics.WatcherStatus
}

// NewWatcher creates a watcher over the configured uploads directory.
func NewWatcher(config *core.Config, runner ReportRunner, manager *shutdown.Manager, collector metrics.MetricsCollector, logger *zap.Logger) *Watcher {
	return &Watcher{
		config:    config,
		runner:    runner,
		manager:   manager,
		metrics:   collector,
		logger:    logger,
		processed: make(map[fileKey]struct{}),
		pending:   make(map[string]fileState),
		status:    metrics.WatcherStatus{UploadsDir: config.UploadsDir},
	}
}

// Run polls until ctx is cancelled. PDFs already present at startup are
// picked up by the first scans.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("Watching uploads directory",
		zap.String("dir", w.config.UploadsDir),
		zap.Duration("interval", w.config.WatchInterval),
	)

	w.status.Running = true
	w.publishStatus()
	defer func() {
		w.status.Running = false
		w.publishStatus()
		w.logger.Info("Watcher stopped",
			zap.Int64("files_processed", w.status.FilesProcessed),
			zap.Int64("files_skipped", w.status.FilesSkipped),
		)
	}()

	ticker := time.NewTicker(w.config.WatchInterval)
	defer ticker.Stop()

	w.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// scan examines the uploads directory once and runs the pipeline for
// every settled, unseen PDF.
func (w *Watcher) scan(ctx context.Context) {
	entries, err := os.ReadDir(w.config.UploadsDir)
	if err != nil {
		w.logger.Error("Failed to read uploads directory",
			zap.String("dir", w.config.UploadsDir),
			zap.Error(err),
		)
		return
	}

	w.status.LastScan = time.Now()
	present := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		present[name] = struct{}{}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}

		key := fileKey{name: name, modTime: info.ModTime().UnixNano()}
		if _, seen := w.processed[key]; seen {
			continue
		}

		if !core.IsPDF(name) {
			w.logger.Debug("Ignoring non-PDF file", zap.String("file", name))
			w.markSkipped(key)
			continue
		}
		if info.Size() > w.config.MaxFileSize {
			w.logger.Warn("Skipping oversized PDF",
				zap.String("file", name),
				zap.String("size", core.FormatBytes(info.Size())),
				zap.String("limit", core.FormatBytes(w.config.MaxFileSize)),
			)
			w.markSkipped(key)
			continue
		}

		// Process only after a full interval without growth, so a PDF
		// still being copied in is not fed to the pipeline halfway.
		current := fileState{size: info.Size(), modTime: info.ModTime().UnixNano()}
		previous, tracked := w.pending[name]
		w.pending[name] = current
		if !tracked || previous != current {
			continue
		}
		delete(w.pending, name)

		w.processed[key] = struct{}{}
		w.processFile(ctx, name)
	}

	// Forget half-settled files that disappeared before processing
	for name := range w.pending {
		if _, ok := present[name]; !ok {
			delete(w.pending, name)
		}
	}

	w.publishStatus()
}

// processFile runs the pipeline for one upload as a tracked operation.
// A failed run is not retried; re-uploading the file queues it again.
func (w *Watcher) processFile(ctx context.Context, name string) {
	path := filepath.Join(w.config.UploadsDir, name)
	w.logger.Info("New upload detected", zap.String("file", name))

	err := w.manager.WrapOperation(ctx, "report-run", func(runCtx context.Context) error {
		result, err := w.runner.Build(runCtx, path)
		if err != nil {
			return err
		}
		w.logger.Info("Report ready",
			zap.String("file", name),
			zap.String("report", result.ReportPath),
			zap.String("prompt_source", result.PromptSource),
			zap.Bool("truncated", result.Prepared.Truncated),
			zap.Duration("took", result.BuildTime),
		)
		return nil
	})
	if errors.Is(err, shutdown.ErrTrackerClosed) {
		w.logger.Info("Run rejected, pipeline is shutting down", zap.String("file", name))
		return
	}
	if err != nil {
		w.logger.Error("Report run failed", zap.String("file", name), zap.Error(err))
	}

	w.status.FilesProcessed++
	w.status.LastFile = name
}

func (w *Watcher) markSkipped(key fileKey) {
	w.processed[key] = struct{}{}
	w.status.FilesSkipped++
}

// publishStatus pushes the current watcher snapshot to the collector.
func (w *Watcher) publishStatus() {
	if w.metrics == nil {
		return
	}
	w.metrics.UpdateWatcherStatus(w.status)
}
