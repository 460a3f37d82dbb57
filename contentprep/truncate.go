// Package contentprep prepares extracted document text for an LLM request.
//
// truncate.go implements the Truncator molecule that reduces content to a
// token budget, preferring structurally important sections. It composes:
//   - tokens.go: Counter for token counting and whole-token cuts
//   - sections.go: SplitSections for header detection
package contentprep

import (
	"strings"

	"go.uber.org/zap"
)

// TokenCounter counts tokens and cuts text at whole-token boundaries for a
// target model. *Counter is the production implementation.
type TokenCounter interface {
	Count(text, model string) int
	Truncate(text, model string, maxTokens int) string
}

// TruncatePath identifies which truncation strategy produced a result.
type TruncatePath string

const (
	// PathNone means the content already fit the budget and was returned
	// unchanged.
	PathNone TruncatePath = "none"

	// PathStructural means sections were detected and assembled
	// priority-first under the budget.
	PathStructural TruncatePath = "structural"

	// PathSimple means no usable structure was found and the content was
	// cut to a flat token prefix.
	PathSimple TruncatePath = "simple"
)

// TruncateOutcome describes how a truncation was performed, for logging and
// run metrics.
type TruncateOutcome struct {
	// Path is the strategy that produced the result.
	Path TruncatePath

	// SectionsKept is the number of sections fully or partially included
	// (structural path only).
	SectionsKept int

	// SectionsTotal is the number of sections detected.
	SectionsTotal int

	// Partial is true when the last included section was cut mid-way to
	// spend the remaining budget.
	Partial bool
}

// TruncatorConfig holds configuration for budget-aware truncation.
type TruncatorConfig struct {
	// Splitter controls section detection and the priority set.
	Splitter SplitterConfig

	// PartialReserve is the minimum remaining budget, in tokens, worth
	// spending on a truncated prefix of a section that does not fit whole.
	PartialReserve int

	// SectionSeparator joins accumulated sections in the output.
	// Defaults to "\n\n" if empty.
	SectionSeparator string
}

// DefaultTruncatorConfig returns sensible default configuration.
func DefaultTruncatorConfig() TruncatorConfig {
	return TruncatorConfig{
		Splitter:         DefaultSplitterConfig(),
		PartialReserve:   100,
		SectionSeparator: "\n\n",
	}
}

// Truncator reduces content to fit a token budget, preserving the most
// informationally valuable sections first.
//
// Thread-Safety:
//   - Truncator is safe for concurrent use (stateless beyond its
//     read-only configuration and the injected counter).
type Truncator struct {
	counter TokenCounter
	config  TruncatorConfig
	logger  *zap.Logger
}

// NewTruncator creates a Truncator using the given counter for all token
// arithmetic.
//
// Example:
//
//	counter := contentprep.NewCounter(logger)
//	truncator := contentprep.NewTruncator(counter, contentprep.DefaultTruncatorConfig(), logger)
//	fitted, outcome := truncator.TruncateToFit(content, "gpt-4o-mini", 15000)
func NewTruncator(counter TokenCounter, config TruncatorConfig, logger *zap.Logger) *Truncator {
	if config.SectionSeparator == "" {
		config.SectionSeparator = "\n\n"
	}
	if len(config.Splitter.HeaderVocabulary) == 0 {
		config.Splitter = DefaultSplitterConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Truncator{
		counter: counter,
		config:  config,
		logger:  logger,
	}
}

// TruncateToFit returns content reduced to at most maxTokens tokens for the
// given model, with an outcome describing the strategy used.
//
// The fast path returns content unchanged when it already fits; this costs
// a single token count and no splitting. Otherwise sections are detected
// and assembled greedily, priority sections first in their original order,
// then the remaining sections in their original order, joined with the
// section separator. A section that does not fit whole contributes a
// whole-token prefix when more than PartialReserve tokens of budget remain,
// and ends its group's accumulation. When structure is not recognized the
// content is cut to a flat token prefix, which is always correctness-safe.
func (t *Truncator) TruncateToFit(content, model string, maxTokens int) (string, TruncateOutcome) {
	if t.counter.Count(content, model) <= maxTokens {
		return content, TruncateOutcome{Path: PathNone}
	}

	sections, structured := SplitSections(content, t.config.Splitter)
	if !structured {
		t.logger.Debug("section structure not recognized, cutting flat token prefix",
			zap.Int("max_tokens", maxTokens),
			zap.Int("sections_detected", len(sections)))
		return t.counter.Truncate(content, model, maxTokens), TruncateOutcome{
			Path:          PathSimple,
			SectionsTotal: len(sections),
		}
	}

	prioritized, rest := partitionSections(sections, t.config.Splitter)

	outcome := TruncateOutcome{Path: PathStructural, SectionsTotal: len(sections)}
	sepTokens := t.counter.Count(t.config.SectionSeparator, model)
	remaining := maxTokens
	var parts []string

	// take greedily accumulates one group in original order. A partial
	// prefix ends the group's accumulation.
	take := func(group []Section) {
		for _, sec := range group {
			sepCost := sepTokens
			if len(parts) == 0 {
				sepCost = 0
			}
			if remaining <= sepCost {
				return
			}
			budget := remaining - sepCost

			secTokens := t.counter.Count(sec.Text, model)
			if secTokens <= budget {
				parts = append(parts, sec.Text)
				remaining -= sepCost + secTokens
				outcome.SectionsKept++
				continue
			}
			if budget > t.config.PartialReserve {
				parts = append(parts, t.counter.Truncate(sec.Text, model, budget))
				remaining = 0
				outcome.SectionsKept++
				outcome.Partial = true
			}
			return
		}
	}

	take(prioritized)
	if remaining > 0 {
		take(rest)
	}

	// Every section can exceed a tiny budget; a flat prefix still honors it.
	if len(parts) == 0 {
		return t.counter.Truncate(content, model, maxTokens), TruncateOutcome{
			Path:          PathSimple,
			SectionsTotal: len(sections),
		}
	}

	result := strings.Join(parts, t.config.SectionSeparator)
	t.logger.Debug("content truncated by section priority",
		zap.Int("max_tokens", maxTokens),
		zap.Int("sections_total", outcome.SectionsTotal),
		zap.Int("sections_kept", outcome.SectionsKept),
		zap.Bool("partial_section", outcome.Partial))
	return result, outcome
}

// partitionSections splits sections into the priority group and the rest,
// preserving original relative order within each group.
func partitionSections(sections []Section, config SplitterConfig) (prioritized, rest []Section) {
	for _, sec := range sections {
		if config.isPriority(sec.Header) {
			prioritized = append(prioritized, sec)
		} else {
			rest = append(rest, sec)
		}
	}
	return prioritized, rest
}
