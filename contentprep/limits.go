package contentprep

import "strings"

// DefaultContextLimit is the conservative context-window size assumed for
// any model family not present in the limits table.
const DefaultContextLimit = 128000

// defaultContextLimits maps base model families to their context-window
// sizes (combined input and output tokens). Dated or versioned model names
// normalize to the longest matching family prefix.
var defaultContextLimits = map[string]int{
	"gpt-4o":        128000,
	"gpt-4o-mini":   128000,
	"gpt-4-turbo":   128000,
	"gpt-4-32k":     32768,
	"gpt-4":         8192,
	"gpt-3.5-turbo": 16385,
	"o1":            200000,
	"o1-mini":       128000,
}

// ContextLimit returns the context-window size for a model. Never fails:
// unrecognized models return DefaultContextLimit.
//
// Example:
//
//	ContextLimit("gpt-4")                   // Returns 8192
//	ContextLimit("gpt-4o-mini-2024-07-18")  // Returns 128000
//	ContextLimit("some-unreleased-model-x") // Returns 128000
func ContextLimit(model string) int {
	return lookupContextLimit(defaultContextLimits, model)
}

// lookupContextLimit resolves model against a limits table. An exact match
// wins; otherwise the longest family prefix of the model name wins, so
// "gpt-4-32k-0613" resolves to "gpt-4-32k" rather than "gpt-4".
func lookupContextLimit(limits map[string]int, model string) int {
	m := strings.ToLower(strings.TrimSpace(model))
	if limit, ok := limits[m]; ok {
		return limit
	}

	best := ""
	for family := range limits {
		if strings.HasPrefix(m, family) && len(family) > len(best) {
			best = family
		}
	}
	if best != "" {
		return limits[best]
	}
	return DefaultContextLimit
}

// mergeContextLimits overlays override entries onto the default table,
// returning a new map. Keys are lowercased so table lookups stay
// case-insensitive.
func mergeContextLimits(overrides map[string]int) map[string]int {
	merged := make(map[string]int, len(defaultContextLimits)+len(overrides))
	for family, limit := range defaultContextLimits {
		merged[family] = limit
	}
	for family, limit := range overrides {
		if limit > 0 {
			merged[strings.ToLower(family)] = limit
		}
	}
	return merged
}
