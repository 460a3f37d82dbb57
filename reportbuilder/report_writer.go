// Package reportbuilder drives one PDF through the full report pipeline:
// extraction, prompt resolution, token budgeting, the completion call, and
// report output.
//
// report_writer.go implements the ReportWriter molecule that stores
// finished reports under sequential report_N.md names in the reports
// directory.
package reportbuilder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoReportsDir is returned when the writer has no reports directory
// configured.
var ErrNoReportsDir = errors.New("reportbuilder: reports directory not configured")

// ReportWriter writes generated reports to disk.
//
// Reports are named report_1.md, report_2.md, ... with N chosen as the
// first index not already present, so existing reports are never
// overwritten.
type ReportWriter struct {
	dir string
}

// NewReportWriter creates a writer that stores reports in dir.
// The directory is created on first write if it does not exist.
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

// Dir returns the configured reports directory.
func (w *ReportWriter) Dir() string {
	return w.dir
}

// Write stores content under the first free report_N.md name and returns
// the path written.
//
// The file is claimed with O_EXCL so two concurrent writers can never
// land on the same index.
func (w *ReportWriter) Write(content string) (string, error) {
	if w.dir == "" {
		return "", ErrNoReportsDir
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	for n := 1; ; n++ {
		path := filepath.Join(w.dir, fmt.Sprintf("report_%d.md", n))

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to create report file: %w", err)
		}

		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close report file: %w", err)
		}

		return path, nil
	}
}
