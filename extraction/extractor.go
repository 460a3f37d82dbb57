// Package extraction converts PDF papers into the plain text the report
// pipeline feeds downstream.
//
// extractor.go implements the Extractor molecule that parses PDFs
// in-process. It uses the ledongthuc/pdf library and walks the document
// page by page, joining page texts the same way the remote service joins
// layout elements.
package extraction

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const megabyte = 1024 * 1024

// ExtractorConfig holds configuration for in-process PDF text extraction.
type ExtractorConfig struct {
	// SkipEmptyPages when true excludes pages with no text from the
	// element count
	SkipEmptyPages bool

	// PageSeparator is the string inserted between page texts
	// Defaults to "\n\n" if empty
	PageSeparator string

	// ContinueOnError when true continues extraction even if some pages fail
	ContinueOnError bool

	// MaxPages limits extraction to the first N pages (0 for all pages)
	MaxPages int
}

// DefaultExtractorConfig returns sensible default configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		SkipEmptyPages:  true,
		PageSeparator:   "\n\n",
		ContinueOnError: true,
		MaxPages:        0,
	}
}

// Extractor extracts text from PDF files on local disk.
//
// Thread Safety: Extractor is safe for concurrent use. Each call opens
// its own reader.
type Extractor struct {
	config ExtractorConfig
	logger *zap.Logger
}

// NewExtractor creates an Extractor with the given configuration.
// A nil logger disables logging.
func NewExtractor(config ExtractorConfig, logger *zap.Logger) *Extractor {
	if config.PageSeparator == "" {
		config.PageSeparator = "\n\n"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{config: config, logger: logger}
}

// NewDefaultExtractor creates an Extractor with default configuration.
func NewDefaultExtractor(logger *zap.Logger) *Extractor {
	return NewExtractor(DefaultExtractorConfig(), logger)
}

// Extract parses the PDF at path and returns its text content.
//
// Pages are read in order and joined with the configured separator.
// Empty pages contribute nothing; pages that fail to parse are skipped
// when ContinueOnError is set and abort the extraction otherwise.
//
// Example:
//
//	extractor := NewDefaultExtractor(logger)
//	result, err := extractor.Extract(ctx, "/path/to/paper.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Content)
func (e *Extractor) Extract(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("extraction: failed to stat PDF: %w", err)
	}
	fileSizeMB := float64(info.Size()) / megabyte

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extraction: failed to open PDF: %w", err)
	}
	defer f.Close()

	totalPages := r.NumPage()
	pagesToProcess := totalPages
	if e.config.MaxPages > 0 && e.config.MaxPages < totalPages {
		pagesToProcess = e.config.MaxPages
	}

	var builder strings.Builder
	extracted := 0
	empty := 0
	failed := 0

	// Pages are 1-indexed in ledongthuc/pdf.
	for pageIndex := 1; pageIndex <= pagesToProcess; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := e.extractPage(r, pageIndex)
		if err != nil {
			failed++
			if !e.config.ContinueOnError {
				return nil, fmt.Errorf("extraction: page %d: %w", pageIndex, err)
			}
			e.logger.Warn("skipping unreadable page",
				zap.String("path", path),
				zap.Int("page", pageIndex),
				zap.Error(err))
			continue
		}

		if text == "" {
			empty++
			continue
		}

		extracted++
		if builder.Len() > 0 {
			builder.WriteString(e.config.PageSeparator)
		}
		builder.WriteString(text)
	}

	content := builder.String()
	if content == "" {
		return nil, ErrNoPDFContent
	}

	numElements := extracted
	if !e.config.SkipEmptyPages {
		numElements += empty
	}

	e.logger.Debug("extracted PDF text",
		zap.String("path", path),
		zap.Int("total_pages", totalPages),
		zap.Int("extracted_pages", extracted),
		zap.Int("empty_pages", empty),
		zap.Int("failed_pages", failed),
		zap.Int("chars", len(content)),
		zap.Float64("file_size_mb", fileSizeMB))

	return &Result{
		Content:     content,
		NumElements: numElements,
		FileSizeMB:  fileSizeMB,
	}, nil
}

// extractPage returns the trimmed plain text of a single page. Pages
// with no content dictionary return "" without error.
func (e *Extractor) extractPage(r *pdf.Reader, pageIndex int) (string, error) {
	p := r.Page(pageIndex)
	if p.V.IsNull() {
		return "", nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return strings.TrimSpace(text), nil
}
