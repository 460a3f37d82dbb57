// Package extraction converts PDF papers into the plain text the report
// pipeline feeds downstream.
//
// extraction.go defines the atoms shared by both implementations: the
// Service interface, the Result type, and the sentinel errors. Two
// implementations exist:
//   - extractor.go: Extractor parses PDFs in-process with ledongthuc/pdf
//   - client.go: Client delegates parsing to a remote document-processor
//     service over HTTP
//
// Callers pick one at wiring time based on configuration and depend only
// on Service.
package extraction

import (
	"context"
	"errors"
)

// ErrEmptyPath is returned when an empty document path is provided.
var ErrEmptyPath = errors.New("extraction: empty document path provided")

// ErrNoPDFContent is returned when a document yields no extractable text.
var ErrNoPDFContent = errors.New("extraction: no text content found in document")

// Result contains the outcome of a document extraction.
type Result struct {
	// Content is the extracted text with elements joined by blank lines.
	Content string `json:"content"`

	// NumElements is the number of text elements that contributed to
	// Content: pages for the local extractor, layout elements for the
	// remote service.
	NumElements int `json:"num_elements"`

	// FileSizeMB is the source document size in megabytes.
	FileSizeMB float64 `json:"file_size_mb"`
}

// Service extracts text from a PDF document on local disk.
type Service interface {
	// Extract reads the document at path and returns its text content.
	// The context bounds the whole extraction, including any remote
	// calls.
	Extract(ctx context.Context, path string) (*Result, error)
}
