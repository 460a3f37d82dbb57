// Package contentprep prepares extracted document text for an LLM request.
// This package handles token counting, model context-limit resolution,
// structural section splitting, and token-budget-aware truncation.
package contentprep

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// DefaultEncoding is the tokenizer encoding used for models that do not
// map to a more specific one.
const DefaultEncoding = "cl100k_base"

// charsPerToken is the character-per-token ratio used when the precise
// tokenizer is unavailable.
const charsPerToken = 4

// allowAllSpecial makes Encode treat special-token text (for example
// "<|endoftext|>" appearing verbatim in a document) as ordinary encodable
// input instead of panicking.
var allowAllSpecial = []string{"all"}

// EncodingForModel resolves a model name to its tokenizer encoding name.
// Unknown or unlisted models map to DefaultEncoding rather than failing.
//
// Example:
//
//	EncodingForModel("gpt-4o-mini")   // Returns "o200k_base"
//	EncodingForModel("gpt-4")         // Returns "cl100k_base"
//	EncodingForModel("future-model")  // Returns "cl100k_base"
func EncodingForModel(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "gpt-4o"):
		return "o200k_base"
	case strings.HasPrefix(m, "gpt-4"), strings.HasPrefix(m, "gpt-3.5-turbo"):
		return "cl100k_base"
	default:
		return DefaultEncoding
	}
}

// EstimateTokens provides a rough estimate of tokens in a text.
// It uses an average of 4 characters per token as an approximation,
// which is a reasonable heuristic for English text with GPT-style tokenizers.
//
// This is a pure function with no dependencies - it simply performs
// character counting and division.
//
// Example:
//
//	tokens := EstimateTokens("Hello, world!") // Returns 3
//	tokens := EstimateTokens("")              // Returns 0
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return len(text) / charsPerToken
}

// Counter counts and truncates text in tokenizer units for a target model.
//
// Token counting is advisory infrastructure: if the tokenizer encoding for a
// model cannot be obtained, the Counter degrades to the character-count
// heuristic (EstimateTokens) instead of failing. The degradation is logged
// once per encoding and exposed via Degraded.
//
// Thread-Safety:
//   - Counter is safe for concurrent use. Encoding instances are lazily
//     initialized per encoding name and cached; entries are read-only after
//     construction.
type Counter struct {
	logger *zap.Logger

	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
	degraded  bool
}

// NewCounter creates a Counter that logs tokenizer degradation to the given
// logger.
//
// Example:
//
//	counter := contentprep.NewCounter(logger)
//	tokens := counter.Count(text, "gpt-4o-mini")
func NewCounter(logger *zap.Logger) *Counter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Counter{
		logger:    logger,
		encodings: make(map[string]*tiktoken.Tiktoken),
	}
}

// Count returns the number of tokens in text for the given model.
//
// Never fails: if the tokenizer is unavailable it falls back to the
// character-count heuristic. Empty text counts as zero tokens.
func (c *Counter) Count(text, model string) int {
	if text == "" {
		return 0
	}
	enc := c.encoding(model)
	if enc == nil {
		return EstimateTokens(text)
	}
	return len(enc.Encode(text, allowAllSpecial, nil))
}

// Truncate returns text reduced to at most maxTokens tokens for the given
// model. Text already within the limit is returned unchanged.
//
// The cut rounds down to the nearest whole token; decoding a whole-token
// prefix can still land inside a multi-byte sequence at the boundary, which
// is accepted. When the tokenizer is unavailable the cut falls back to
// maxTokens*4 bytes.
func (c *Counter) Truncate(text, model string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return ""
	}
	enc := c.encoding(model)
	if enc == nil {
		if EstimateTokens(text) <= maxTokens {
			return text
		}
		return text[:maxTokens*charsPerToken]
	}
	tokens := enc.Encode(text, allowAllSpecial, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}

// Degraded reports whether any token counting has fallen back to the
// character-count heuristic since construction.
func (c *Counter) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

// encoding returns the cached tokenizer for the model's encoding, loading it
// on first use. Returns nil when the encoding cannot be obtained; the failure
// is recorded so it is logged only once per encoding name.
func (c *Counter) encoding(model string) *tiktoken.Tiktoken {
	name := EncodingForModel(model)

	c.mu.RLock()
	enc, ok := c.encodings[name]
	c.mu.RUnlock()
	if ok {
		return enc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodings[name]; ok {
		return enc
	}

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		c.encodings[name] = nil
		c.degraded = true
		c.logger.Warn("tokenizer encoding unavailable, counting with character heuristic",
			zap.String("encoding", name),
			zap.Error(err))
		return nil
	}
	c.encodings[name] = enc
	return enc
}
