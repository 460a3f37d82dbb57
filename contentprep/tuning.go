package contentprep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds optional overrides for the content-preparation heuristics,
// loaded from a YAML file. Zero-value fields keep the defaults.
//
// Example file:
//
//	max_header_length: 80
//	token_buffer: 1500
//	priority_sections: [abstract, conclusion]
//	context_limits:
//	  my-private-model: 32000
type Tuning struct {
	HeaderVocabulary []string       `yaml:"header_vocabulary"`
	PrioritySections []string       `yaml:"priority_sections"`
	MaxHeaderLength  int            `yaml:"max_header_length"`
	TokenBuffer      int            `yaml:"token_buffer"`
	PartialReserve   int            `yaml:"partial_reserve"`
	ContextLimits    map[string]int `yaml:"context_limits"`
}

// LoadTuning reads and parses a tuning file.
func LoadTuning(path string) (Tuning, error) {
	var tuning Tuning
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("reading tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return Tuning{}, fmt.Errorf("parsing tuning file %s: %w", path, err)
	}
	return tuning, nil
}

// ApplySplitter overlays the non-zero tuning fields onto a splitter config.
func (t Tuning) ApplySplitter(config SplitterConfig) SplitterConfig {
	if len(t.HeaderVocabulary) > 0 {
		config.HeaderVocabulary = t.HeaderVocabulary
	}
	if len(t.PrioritySections) > 0 {
		config.PrioritySections = t.PrioritySections
	}
	if t.MaxHeaderLength > 0 {
		config.MaxHeaderLength = t.MaxHeaderLength
	}
	return config
}

// ApplyTruncator overlays the non-zero tuning fields onto a truncator
// config, including its splitter.
func (t Tuning) ApplyTruncator(config TruncatorConfig) TruncatorConfig {
	config.Splitter = t.ApplySplitter(config.Splitter)
	if t.PartialReserve > 0 {
		config.PartialReserve = t.PartialReserve
	}
	return config
}

// ApplyPreparer overlays the non-zero tuning fields onto a preparer config.
func (t Tuning) ApplyPreparer(config PreparerConfig) PreparerConfig {
	if t.TokenBuffer > 0 {
		config.TokenBuffer = t.TokenBuffer
	}
	if len(t.ContextLimits) > 0 {
		if config.ContextLimits == nil {
			config.ContextLimits = make(map[string]int, len(t.ContextLimits))
		}
		for family, limit := range t.ContextLimits {
			config.ContextLimits[family] = limit
		}
	}
	return config
}
