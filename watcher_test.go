package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"paperpitch/core"
	"paperpitch/metrics"
	"paperpitch/reportbuilder"
	"paperpitch/shutdown"

	"go.uber.org/zap/zaptest"
)

type stubRunner struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (s *stubRunner) Build(ctx context.Context, pdfPath string) (*reportbuilder.BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, pdfPath)
	if s.err != nil {
		return nil, s.err
	}
	return &reportbuilder.BuildResult{
		ReportPath:   "reports/report_1.md",
		PromptSource: metrics.PromptSourceFallback,
	}, nil
}

func (s *stubRunner) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

type watcherFixture struct {
	watcher *Watcher
	runner  *stubRunner
	manager *shutdown.Manager
	store   *metrics.MetricsStore
	dir     string
}

func newTestWatcher(t *testing.T) *watcherFixture {
	t.Helper()
	dir := t.TempDir()
	runner := &stubRunner{}
	manager := shutdown.NewManager(zaptest.NewLogger(t))
	store := metrics.NewMetricsStore(metrics.StoreConfig{
		RunHistoryCapacity: 10,
		Version:            "test",
	}, time.Now())

	config := &core.Config{
		UploadsDir:    dir,
		WatchInterval: 20 * time.Millisecond,
		MaxFileSize:   1 << 20,
	}

	return &watcherFixture{
		watcher: NewWatcher(config, runner, manager, store, zaptest.NewLogger(t)),
		runner:  runner,
		manager: manager,
		store:   store,
		dir:     dir,
	}
}

func writeUpload(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing upload: %v", err)
	}
	return path
}

// settleScans runs two scans so the stability check sees the file
// unchanged across an interval.
func settleScans(w *Watcher) {
	w.scan(context.Background())
	w.scan(context.Background())
}

func TestWatcher_ProcessesSettledPDF(t *testing.T) {
	f := newTestWatcher(t)
	path := writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 bytes")

	f.watcher.scan(context.Background())
	if calls := f.runner.calls(); len(calls) != 0 {
		t.Fatalf("first sighting should not process, got %v", calls)
	}

	f.watcher.scan(context.Background())
	calls := f.runner.calls()
	if len(calls) != 1 || calls[0] != path {
		t.Fatalf("calls = %v, want exactly %q", calls, path)
	}

	status := f.store.GetWatcherStatus()
	if status.UploadsDir != f.dir {
		t.Errorf("UploadsDir = %q, want %q", status.UploadsDir, f.dir)
	}
	if status.FilesProcessed != 1 {
		t.Errorf("FilesProcessed = %d, want 1", status.FilesProcessed)
	}
	if status.LastFile != "paper.pdf" {
		t.Errorf("LastFile = %q, want paper.pdf", status.LastFile)
	}
	if status.LastScan.IsZero() {
		t.Error("LastScan should be set after a scan")
	}
}

func TestWatcher_ProcessesEachFileOnce(t *testing.T) {
	f := newTestWatcher(t)
	writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 bytes")

	for i := 0; i < 5; i++ {
		f.watcher.scan(context.Background())
	}

	if calls := f.runner.calls(); len(calls) != 1 {
		t.Errorf("calls = %d, want 1 across repeated scans", len(calls))
	}
}

func TestWatcher_WaitsForGrowingFile(t *testing.T) {
	f := newTestWatcher(t)
	path := writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 partial")

	f.watcher.scan(context.Background())

	// The copy is still in progress: more bytes, newer mtime
	writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 partial plus the rest of the upload")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	f.watcher.scan(context.Background())
	if calls := f.runner.calls(); len(calls) != 0 {
		t.Fatalf("still-changing file should not process, got %v", calls)
	}

	f.watcher.scan(context.Background())
	if calls := f.runner.calls(); len(calls) != 1 {
		t.Errorf("settled file should process exactly once, got %d calls", len(calls))
	}
}

func TestWatcher_ReprocessesModifiedFile(t *testing.T) {
	f := newTestWatcher(t)
	path := writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 first upload")

	settleScans(f.watcher)
	if len(f.runner.calls()) != 1 {
		t.Fatal("setup: first upload should be processed")
	}

	// Re-upload with new content and a clearly newer mtime
	writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 second upload, revised")
	future := time.Now().Add(3 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	settleScans(f.watcher)
	if calls := f.runner.calls(); len(calls) != 2 {
		t.Errorf("re-uploaded file should be processed again, got %d calls", len(calls))
	}
}

func TestWatcher_SkipsNonPDF(t *testing.T) {
	f := newTestWatcher(t)
	writeUpload(t, f.dir, "notes.txt", "not a paper")

	settleScans(f.watcher)

	if calls := f.runner.calls(); len(calls) != 0 {
		t.Fatalf("non-PDF should never process, got %v", calls)
	}
	if got := f.store.GetWatcherStatus().FilesSkipped; got != 1 {
		t.Errorf("FilesSkipped = %d, want 1", got)
	}

	// Skips are counted once, not once per scan
	f.watcher.scan(context.Background())
	if got := f.store.GetWatcherStatus().FilesSkipped; got != 1 {
		t.Errorf("FilesSkipped after rescan = %d, want 1", got)
	}
}

func TestWatcher_SkipsOversizedPDF(t *testing.T) {
	f := newTestWatcher(t)
	f.watcher.config.MaxFileSize = 8
	writeUpload(t, f.dir, "huge.pdf", "%PDF-1.4 far larger than the limit")

	settleScans(f.watcher)

	if calls := f.runner.calls(); len(calls) != 0 {
		t.Fatalf("oversized PDF should never process, got %v", calls)
	}
	if got := f.store.GetWatcherStatus().FilesSkipped; got != 1 {
		t.Errorf("FilesSkipped = %d, want 1", got)
	}
}

func TestWatcher_IgnoresDirectories(t *testing.T) {
	f := newTestWatcher(t)
	nested := filepath.Join(f.dir, "archive")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeUpload(t, nested, "stale.pdf", "%PDF-1.4 old")

	settleScans(f.watcher)

	if calls := f.runner.calls(); len(calls) != 0 {
		t.Fatalf("nested files should not process, got %v", calls)
	}
	if got := f.store.GetWatcherStatus().FilesSkipped; got != 0 {
		t.Errorf("directories are not skipped files, FilesSkipped = %d", got)
	}
}

func TestWatcher_FailedRunIsNotRetried(t *testing.T) {
	f := newTestWatcher(t)
	f.runner.err = errors.New("llm unavailable")
	writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 bytes")

	settleScans(f.watcher)
	f.watcher.scan(context.Background())

	if calls := f.runner.calls(); len(calls) != 1 {
		t.Errorf("failed run should not retry, got %d calls", len(calls))
	}
	if got := f.store.GetWatcherStatus().FilesProcessed; got != 1 {
		t.Errorf("FilesProcessed = %d, want 1", got)
	}
}

func TestWatcher_RejectsRunsDuringShutdown(t *testing.T) {
	f := newTestWatcher(t)
	if err := f.manager.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 bytes")
	settleScans(f.watcher)

	if calls := f.runner.calls(); len(calls) != 0 {
		t.Errorf("closed tracker should reject runs, got %v", calls)
	}
	if got := f.store.GetWatcherStatus().FilesProcessed; got != 0 {
		t.Errorf("rejected run should not count as processed, got %d", got)
	}
}

func TestWatcher_RunLifecycle(t *testing.T) {
	f := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		f.watcher.Run(ctx)
		close(done)
	}()

	writeUpload(t, f.dir, "paper.pdf", "%PDF-1.4 bytes")

	deadline := time.After(3 * time.Second)
	for f.store.GetWatcherStatus().FilesProcessed == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the watcher to process the upload")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := f.store.GetWatcherStatus(); !got.Running {
		t.Error("status should report Running while the loop is active")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run should return after context cancellation")
	}

	if got := f.store.GetWatcherStatus(); got.Running {
		t.Error("status should report stopped after Run returns")
	}
}
