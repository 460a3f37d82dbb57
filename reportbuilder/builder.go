// Package reportbuilder drives one PDF through the full report pipeline.
//
// builder.go implements the Builder organism that orchestrates a run. It
// composes the following collaborators:
//   - extraction.Service: PDF text extraction
//   - PromptGetter: system prompt fetch (promptstore.Client)
//   - ContentPreparer: token budgeting and truncation (contentprep.Preparer)
//   - Completer: the chat completion call (llm.Client)
//   - report_writer.go: ReportWriter for sequential report_N.md output
//   - RunRecorder: run persistence (reportstore.Repository)
//   - metrics.MetricsCollector: in-memory run metrics
package reportbuilder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"paperpitch/contentprep"
	"paperpitch/extraction"
	"paperpitch/llm"
	"paperpitch/logging"
	"paperpitch/metrics"
	"paperpitch/promptstore"
	"paperpitch/reportstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InstructionText is prepended to the fetched system prompt before the
// completion call.
const InstructionText = "Extract this paper and create a 5-minute pitch: [PDF]"

// ErrBuilderNotConfigured is returned when the builder is missing a
// required collaborator.
var ErrBuilderNotConfigured = errors.New("report builder not properly configured")

// ErrNoPromptStore signals that no prompt store client was wired; runs
// take the fallback path.
var ErrNoPromptStore = errors.New("reportbuilder: prompt store not configured")

// PromptGetter fetches a named system prompt from the prompt store.
type PromptGetter interface {
	GetPrompt(ctx context.Context, name string) (promptstore.Prompt, error)
}

// ContentPreparer fits document content to a model's token budget.
type ContentPreparer interface {
	Prepare(content, systemPrompt, model string) (contentprep.Prepared, error)
}

// Completer sends one chat completion request.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// RunRecorder persists one pipeline run record.
type RunRecorder interface {
	InsertRun(ctx context.Context, run reportstore.ReportRun) (int64, error)
}

// ProgressCallback is called to report run progress.
// stage is the current stage name, progress is 0.0-1.0, message is a
// human-readable status.
type ProgressCallback func(stage string, progress float64, message string)

// BuilderConfig holds configuration for the report builder.
type BuilderConfig struct {
	// Model is the chat model reports are generated with
	Model string

	// PromptName is the prompt fetched from the store
	PromptName string

	// Language is substituted for the {{LANGUAGE}} placeholder in the
	// fetched prompt
	Language string
}

// DefaultBuilderConfig returns sensible default configuration.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		Model:      "gpt-4o-mini",
		PromptName: "paper-pitch",
		Language:   "french",
	}
}

// BuildStages contains timing information for each pipeline stage.
type BuildStages struct {
	ExtractionTime time.Duration
	PromptTime     time.Duration
	PrepareTime    time.Duration
	CompletionTime time.Duration
	WriteTime      time.Duration
}

// BuildResult contains the complete outcome of one pipeline run.
type BuildResult struct {
	// CorrelationID ties the run's log lines, stored record, and metrics
	// together
	CorrelationID string

	// Report is the generated markdown content
	Report string

	// ReportPath is where the report was written
	ReportPath string

	// PromptSource records which prompt path ran: "store" or "fallback"
	PromptSource string

	// PromptName and PromptVersion identify the fetched prompt
	// (store path only)
	PromptName    string
	PromptVersion int

	// Extraction carries the text extraction outcome
	Extraction *extraction.Result

	// Prepared carries the token budgeting outcome
	Prepared contentprep.Prepared

	// Usage is the API-reported token accounting
	Usage llm.Usage

	// BuildTime is the total time taken for the run
	BuildTime time.Duration

	// Stages contains timing for each pipeline stage
	Stages BuildStages
}

// BuilderDependencies holds the collaborators injected into the Builder.
// Extractor, Preparer, Completer, and Writer are required. Prompts may be
// nil, in which case every run takes the fallback path. Recorder,
// Collector, and Logger may be nil to disable persistence, metrics, and
// logging respectively.
type BuilderDependencies struct {
	Extractor extraction.Service
	Prompts   PromptGetter
	Preparer  ContentPreparer
	Completer Completer
	Writer    *ReportWriter
	Recorder  RunRecorder
	Collector metrics.MetricsCollector
	Logger    *zap.Logger
}

// Builder orchestrates PDF extraction, prompt resolution, token
// budgeting, the completion call, and report output for one run at a
// time.
//
// The prompt flow is a two-path state machine: the primary path fetches
// the configured prompt from the store, substitutes the language, and
// prepends InstructionText; if and only if the fetch fails, the fallback
// path sends the extracted content without a system prompt. Completion
// failures never trigger the fallback. Both paths go through the content
// preparer, so the fallback is still token-budgeted.
type Builder struct {
	config    BuilderConfig
	extractor extraction.Service
	prompts   PromptGetter
	preparer  ContentPreparer
	completer Completer
	writer    *ReportWriter
	recorder  RunRecorder
	collector metrics.MetricsCollector
	logger    *zap.Logger
	progress  ProgressCallback
}

// NewBuilder creates a Builder with the given configuration and
// collaborators. Empty config fields fall back to DefaultBuilderConfig
// values.
//
// Example:
//
//	builder := reportbuilder.NewBuilder(reportbuilder.DefaultBuilderConfig(),
//	    reportbuilder.BuilderDependencies{
//	        Extractor: extractor,
//	        Prompts:   promptClient,
//	        Preparer:  preparer,
//	        Completer: llmClient,
//	        Writer:    reportbuilder.NewReportWriter("reports"),
//	    })
//	result, err := builder.Build(ctx, "uploads/paper.pdf")
func NewBuilder(config BuilderConfig, deps BuilderDependencies) *Builder {
	defaults := DefaultBuilderConfig()
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.PromptName == "" {
		config.PromptName = defaults.PromptName
	}
	if config.Language == "" {
		config.Language = defaults.Language
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{
		config:    config,
		extractor: deps.Extractor,
		prompts:   deps.Prompts,
		preparer:  deps.Preparer,
		completer: deps.Completer,
		writer:    deps.Writer,
		recorder:  deps.Recorder,
		collector: deps.Collector,
		logger:    logger,
	}
}

// SetProgressCallback sets or updates the progress callback.
func (b *Builder) SetProgressCallback(progress ProgressCallback) {
	b.progress = progress
}

// Build runs the full pipeline for one PDF and returns the outcome.
// Every run, successful or not, is recorded to the run store and the
// metrics collector when those are wired.
//
// Example:
//
//	result, err := builder.Build(ctx, "uploads/paper.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.ReportPath)
func (b *Builder) Build(ctx context.Context, pdfPath string) (*BuildResult, error) {
	if b.extractor == nil || b.preparer == nil || b.completer == nil || b.writer == nil {
		return nil, ErrBuilderNotConfigured
	}

	start := time.Now()
	result := &BuildResult{CorrelationID: uuid.New().String()}

	logger := b.logger.With(
		zap.String("correlation_id", result.CorrelationID),
		zap.String("source_file", filepath.Base(pdfPath)))

	logger.Info("report run started",
		zap.String("path", pdfPath),
		zap.String("model", b.config.Model))

	// Stage 1: extract text from the PDF
	b.reportProgress("extraction", 0.0, "Extracting PDF text...")
	extractStart := time.Now()

	extracted, err := b.extractor.Extract(ctx, pdfPath)
	if err != nil {
		return nil, b.fail(ctx, logger, result, pdfPath, start,
			fmt.Errorf("extraction failed: %w", err))
	}
	result.Extraction = extracted
	result.Stages.ExtractionTime = time.Since(extractStart)

	logger.Info("extraction complete",
		zap.Int("num_elements", extracted.NumElements),
		zap.Float64("file_size_mb", extracted.FileSizeMB),
		zap.Duration("duration", result.Stages.ExtractionTime))
	b.reportProgress("extraction", 1.0, fmt.Sprintf("Extracted %d elements (%.1f MB)",
		extracted.NumElements, extracted.FileSizeMB))

	// Stage 2: resolve the system prompt; a fetch failure selects the
	// fallback path instead of aborting the run
	b.reportProgress("prompt", 0.0, "Fetching system prompt...")
	promptStart := time.Now()

	systemPrompt, prompt, promptErr := b.resolveSystemPrompt(ctx)
	result.Stages.PromptTime = time.Since(promptStart)

	if promptErr != nil {
		result.PromptSource = reportstore.PromptSourceFallback
		logger.Warn("prompt fetch failed, falling back to request without system prompt",
			zap.String("prompt_name", b.config.PromptName),
			zap.Error(promptErr))
		b.reportProgress("prompt", 1.0, "Prompt store unavailable, using fallback")
	} else {
		result.PromptSource = reportstore.PromptSourceStore
		result.PromptName = prompt.Name
		result.PromptVersion = prompt.Version
		logger.Info("system prompt fetched",
			zap.String("prompt_name", prompt.Name),
			zap.Int("prompt_version", prompt.Version),
			zap.String("language", b.config.Language))
		b.reportProgress("prompt", 1.0, fmt.Sprintf("Fetched prompt '%s' v%d",
			prompt.Name, prompt.Version))
	}

	// Stage 3: fit the content to the model's token budget; the fallback
	// path budgets too, with an empty system prompt
	b.reportProgress("prepare", 0.0, "Fitting content to token budget...")
	prepareStart := time.Now()

	prepared, err := b.preparer.Prepare(extracted.Content, systemPrompt, b.config.Model)
	if err != nil {
		return nil, b.fail(ctx, logger, result, pdfPath, start,
			fmt.Errorf("content preparation failed: %w", err))
	}
	result.Prepared = prepared
	result.Stages.PrepareTime = time.Since(prepareStart)

	if prepared.Truncated {
		logger.Warn("content truncated to fit token budget",
			zap.String("truncation_path", string(prepared.Outcome.Path)),
			zap.Int("sections_kept", prepared.Outcome.SectionsKept),
			zap.Int("sections_total", prepared.Outcome.SectionsTotal),
			zap.Int("content_tokens", prepared.ContentTokens),
			zap.Int("system_tokens", prepared.SystemTokens))
	}
	b.reportProgress("prepare", 1.0, fmt.Sprintf("Prepared %d content tokens (truncated: %v)",
		prepared.ContentTokens, prepared.Truncated))

	// Stage 4: the completion call. A failure here aborts the run; it
	// never re-enters the fallback path.
	b.reportProgress("completion", 0.0, "Generating report...")
	completionStart := time.Now()

	resp, err := b.completer.Complete(ctx, llm.Request{
		Model:    b.config.Model,
		Messages: b.buildMessages(systemPrompt, prepared.Content),
	})
	if err != nil {
		return nil, b.fail(ctx, logger, result, pdfPath, start,
			fmt.Errorf("completion failed: %w", err))
	}
	result.Report = resp.Content
	result.Usage = resp.Usage
	result.Stages.CompletionTime = time.Since(completionStart)

	logger.Info("completion finished", logging.CompletionFields(logging.CompletionMetrics{
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Duration:         resp.Duration,
	}))
	b.reportProgress("completion", 1.0, fmt.Sprintf("Generated %d characters", len(resp.Content)))

	// Stage 5: write the report to disk
	b.reportProgress("write", 0.0, "Writing report...")
	writeStart := time.Now()

	reportPath, err := b.writer.Write(resp.Content)
	if err != nil {
		return nil, b.fail(ctx, logger, result, pdfPath, start,
			fmt.Errorf("report write failed: %w", err))
	}
	result.ReportPath = reportPath
	result.Stages.WriteTime = time.Since(writeStart)
	result.BuildTime = time.Since(start)

	b.recordRun(ctx, result, pdfPath, start, nil)

	logger.Info("report run complete",
		zap.String("report_path", reportPath),
		zap.String("prompt_source", result.PromptSource),
		zap.Duration("duration", result.BuildTime))
	b.reportProgress("write", 1.0, fmt.Sprintf("Report saved to %s", reportPath))

	return result, nil
}

// resolveSystemPrompt fetches the configured prompt, substitutes the
// language, and prepends the instruction text. A returned error selects
// the fallback path; it never aborts the run.
func (b *Builder) resolveSystemPrompt(ctx context.Context) (string, promptstore.Prompt, error) {
	if b.prompts == nil {
		return "", promptstore.Prompt{}, ErrNoPromptStore
	}

	prompt, err := b.prompts.GetPrompt(ctx, b.config.PromptName)
	if err != nil {
		return "", promptstore.Prompt{}, err
	}

	compiled := prompt.Compile(b.config.Language)
	return InstructionText + "\n\n" + compiled, prompt, nil
}

// buildMessages assembles the chat messages for the completion call.
// The fallback path carries no system message.
func (b *Builder) buildMessages(systemPrompt, content string) []llm.Message {
	if systemPrompt == "" {
		return []llm.Message{llm.UserMessage(content)}
	}
	return []llm.Message{
		llm.SystemMessage(systemPrompt),
		llm.UserMessage(content),
	}
}

// fail finalizes a failed run: it records the partial result and returns
// the error for the caller to propagate.
func (b *Builder) fail(ctx context.Context, logger *zap.Logger, result *BuildResult, pdfPath string, start time.Time, err error) error {
	result.BuildTime = time.Since(start)
	b.recordRun(ctx, result, pdfPath, start, err)

	logger.Error("report run failed",
		zap.Error(err),
		zap.Duration("duration", result.BuildTime))

	return err
}

// recordRun persists the run and updates metrics. Failures here are
// logged and swallowed: the report, if any, is already on disk.
func (b *Builder) recordRun(ctx context.Context, result *BuildResult, pdfPath string, start time.Time, runErr error) {
	status := reportstore.StatusSuccess
	errorMessage := ""
	if runErr != nil {
		status = reportstore.StatusError
		errorMessage = runErr.Error()
	}

	language := ""
	if result.PromptSource == reportstore.PromptSourceStore {
		language = b.config.Language
	}

	truncationPath := ""
	if result.Prepared.Truncated {
		truncationPath = string(result.Prepared.Outcome.Path)
	}

	if b.recorder != nil {
		run := reportstore.ReportRun{
			CorrelationID:    result.CorrelationID,
			SourceFile:       pdfPath,
			ReportPath:       result.ReportPath,
			Status:           status,
			PromptSource:     result.PromptSource,
			PromptName:       result.PromptName,
			PromptVersion:    result.PromptVersion,
			Language:         language,
			Model:            b.config.Model,
			Truncated:        result.Prepared.Truncated,
			TruncationPath:   truncationPath,
			ContentTokens:    result.Prepared.ContentTokens,
			SystemTokens:     result.Prepared.SystemTokens,
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
			ExtractMS:        int(result.Stages.ExtractionTime.Milliseconds()),
			LLMMS:            int(result.Stages.CompletionTime.Milliseconds()),
			TotalMS:          int(result.BuildTime.Milliseconds()),
			ErrorMessage:     errorMessage,
		}
		if result.Extraction != nil {
			run.NumElements = result.Extraction.NumElements
			run.FileSizeMB = result.Extraction.FileSizeMB
		}

		if _, err := b.recorder.InsertRun(ctx, run); err != nil {
			b.logger.Warn("failed to record run",
				zap.String("correlation_id", result.CorrelationID),
				zap.Error(err))
		}
	}

	if b.collector != nil {
		b.collector.RecordRun(metrics.RunRecord{
			ID:               result.CorrelationID,
			SourceFile:       pdfPath,
			Model:            b.config.Model,
			PromptSource:     result.PromptSource,
			Status:           status,
			Truncated:        result.Prepared.Truncated,
			ContentTokens:    result.Prepared.ContentTokens,
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			LLMDuration:      result.Stages.CompletionTime,
			StartTime:        start,
			EndTime:          start.Add(result.BuildTime),
			Duration:         result.BuildTime,
			ErrorMsg:         errorMessage,
			ReportPath:       result.ReportPath,
		})
	}
}

// reportProgress calls the progress callback if set.
func (b *Builder) reportProgress(stage string, progress float64, message string) {
	if b.progress != nil {
		b.progress(stage, progress, message)
	}
}
