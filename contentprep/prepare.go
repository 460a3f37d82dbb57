// Package contentprep prepares extracted document text for an LLM request.
//
// prepare.go implements the Preparer organism that orchestrates the budget
// computation. It composes:
//   - tokens.go: Counter for token counting
//   - limits.go: context-limit resolution
//   - truncate.go: Truncator for budget-aware truncation
package contentprep

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultTokenBuffer is the number of tokens reserved for the model's own
// continuation when computing the content budget.
const DefaultTokenBuffer = 2000

// ErrEmptyContent is returned when the content to prepare is empty or
// whitespace-only.
var ErrEmptyContent = errors.New("contentprep: content is empty")

// BudgetError reports that the system prompt alone exceeds the model's
// usable context window. There is no safe degraded behavior; the request
// must not be attempted.
type BudgetError struct {
	// Model is the model whose context window was exceeded.
	Model string

	// ContextLimit is the model's context-window size in tokens.
	ContextLimit int

	// SystemTokens is the token count of the system prompt.
	SystemTokens int

	// TokenBuffer is the reserve subtracted for the model's continuation.
	TokenBuffer int
}

// Error implements the error interface.
func (e *BudgetError) Error() string {
	return fmt.Sprintf(
		"contentprep: system prompt (%d tokens) leaves no content budget in %s context window (%d tokens, %d reserved)",
		e.SystemTokens, e.Model, e.ContextLimit, e.TokenBuffer)
}

// ContentTruncator reduces content to fit a token budget. *Truncator is the
// production implementation.
type ContentTruncator interface {
	TruncateToFit(content, model string, maxTokens int) (string, TruncateOutcome)
}

// PreparerConfig holds configuration for content preparation.
type PreparerConfig struct {
	// TokenBuffer is reserved for the model's continuation.
	// Defaults to DefaultTokenBuffer if zero or negative.
	TokenBuffer int

	// ContextLimits overlays or extends the built-in per-family
	// context-limit table.
	ContextLimits map[string]int
}

// DefaultPreparerConfig returns sensible default configuration.
func DefaultPreparerConfig() PreparerConfig {
	return PreparerConfig{
		TokenBuffer: DefaultTokenBuffer,
	}
}

// Prepared is the final content ready to pair with the system prompt in a
// single LLM request, with its token accounting.
type Prepared struct {
	// Content is the (possibly truncated) document content.
	Content string

	// ContentTokens is the token count of Content.
	ContentTokens int

	// SystemTokens is the token count of the system prompt.
	SystemTokens int

	// TotalTokens is SystemTokens + ContentTokens.
	TotalTokens int

	// Truncated is true when the content had to be reduced to fit.
	Truncated bool

	// Outcome describes the truncation strategy when Truncated is true.
	Outcome TruncateOutcome
}

// Preparer determines whether document content fits a model's context
// window alongside a system prompt and truncates it to fit when it does not.
//
// Thread-Safety:
//   - Preparer is safe for concurrent use. Its lookup table is read-only
//     after construction; all per-call state is function-scoped.
type Preparer struct {
	counter   TokenCounter
	truncator ContentTruncator
	config    PreparerConfig
	limits    map[string]int
	logger    *zap.Logger
}

// NewPreparer creates a Preparer with the given collaborators.
//
// Example:
//
//	counter := contentprep.NewCounter(logger)
//	truncator := contentprep.NewTruncator(counter, contentprep.DefaultTruncatorConfig(), logger)
//	preparer := contentprep.NewPreparer(counter, truncator, contentprep.DefaultPreparerConfig(), logger)
//	prepared, err := preparer.Prepare(content, systemPrompt, "gpt-4o-mini")
func NewPreparer(counter TokenCounter, truncator ContentTruncator, config PreparerConfig, logger *zap.Logger) *Preparer {
	if config.TokenBuffer <= 0 {
		config.TokenBuffer = DefaultTokenBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{
		counter:   counter,
		truncator: truncator,
		config:    config,
		limits:    mergeContextLimits(config.ContextLimits),
		logger:    logger,
	}
}

// ContextLimit resolves the context-window size for a model using the
// preparer's merged limits table.
func (p *Preparer) ContextLimit(model string) int {
	return lookupContextLimit(p.limits, model)
}

// Prepare computes the token budget for content alongside systemPrompt and
// truncates the content to fit when necessary.
//
// Returns ErrEmptyContent for empty or whitespace-only content. Returns a
// *BudgetError, without counting the content, when the system prompt alone
// exhausts the model's usable context window.
func (p *Preparer) Prepare(content, systemPrompt, model string) (Prepared, error) {
	if strings.TrimSpace(content) == "" {
		return Prepared{}, ErrEmptyContent
	}

	limit := p.ContextLimit(model)
	systemTokens := p.counter.Count(systemPrompt, model)
	available := limit - systemTokens - p.config.TokenBuffer
	if available <= 0 {
		return Prepared{}, &BudgetError{
			Model:        model,
			ContextLimit: limit,
			SystemTokens: systemTokens,
			TokenBuffer:  p.config.TokenBuffer,
		}
	}

	contentTokens := p.counter.Count(content, model)
	prepared := Prepared{
		Content:       content,
		ContentTokens: contentTokens,
		SystemTokens:  systemTokens,
	}

	if contentTokens > available {
		fitted, outcome := p.truncator.TruncateToFit(content, model, available)
		prepared.Content = fitted
		prepared.ContentTokens = p.counter.Count(fitted, model)
		prepared.Truncated = true
		prepared.Outcome = outcome
		p.logger.Info("content truncated to fit model context",
			zap.String("model", model),
			zap.Int("context_limit", limit),
			zap.Int("system_tokens", systemTokens),
			zap.Int("content_tokens", contentTokens),
			zap.Int("prepared_tokens", prepared.ContentTokens),
			zap.String("path", string(outcome.Path)),
			zap.Int("sections_kept", outcome.SectionsKept),
			zap.Int("sections_total", outcome.SectionsTotal))
	}

	prepared.TotalTokens = prepared.SystemTokens + prepared.ContentTokens
	return prepared, nil
}
