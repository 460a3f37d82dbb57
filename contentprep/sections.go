// Package contentprep prepares extracted document text for an LLM request.
//
// sections.go implements the structural section splitter that detects
// paper-style section headers (abstract, introduction, conclusion and so on)
// by scanning the text line by line.
package contentprep

import "strings"

// SplitterConfig holds the heuristics used to detect section structure.
// The values are configuration, not fixed constants, so they can be tuned
// and tested independently.
type SplitterConfig struct {
	// HeaderVocabulary lists the lowercase words that mark a line as a
	// section header when the line is short enough.
	HeaderVocabulary []string

	// MaxHeaderLength is the exclusive upper bound on header-line length.
	// Longer lines mentioning a vocabulary word are prose, not headers.
	MaxHeaderLength int

	// PrioritySections lists the header labels preserved first when
	// truncating under a tight token budget.
	PrioritySections []string
}

// DefaultSplitterConfig returns the section-detection heuristics for
// academic papers.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		HeaderVocabulary: []string{
			"abstract",
			"introduction",
			"methodology",
			"methods",
			"results",
			"discussion",
			"conclusion",
			"references",
		},
		MaxHeaderLength:  100,
		PrioritySections: []string{"abstract", "introduction", "conclusion"},
	}
}

// headerLabel returns the vocabulary word the line matches as a section
// header, or "" when the line is not a header. Matching is case-insensitive;
// the first vocabulary word found wins, so "Results and Discussion" labels
// as "results".
func (c SplitterConfig) headerLabel(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) >= c.MaxHeaderLength {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, word := range c.HeaderVocabulary {
		if strings.Contains(lower, word) {
			return word
		}
	}
	return ""
}

// isPriority reports whether a section header label belongs to the priority
// set. The untagged leading section (label "") is never priority.
func (c SplitterConfig) isPriority(label string) bool {
	for _, p := range c.PrioritySections {
		if label == p {
			return true
		}
	}
	return false
}

// Section is a contiguous run of lines tagged with the vocabulary label of
// the header line that began it. The leading lines before the first header
// form an untagged section with Header "".
type Section struct {
	// Header is the matched vocabulary label, lowercase; "" for the
	// untagged leading section.
	Header string

	// Text is the section content including its header line.
	Text string
}

// SplitSections partitions text into sections by scanning line by line for
// recognizable headers. The second return value reports whether structure
// was recognized: fewer than 2 sections means the document is unstructured
// and the caller must fall back to flat truncation.
//
// A whitespace-only run of lines before the first header is discarded
// rather than counted as a section.
func SplitSections(text string, config SplitterConfig) ([]Section, bool) {
	lines := strings.Split(text, "\n")

	var sections []Section
	var current []string
	currentLabel := ""

	flush := func() {
		joined := strings.Join(current, "\n")
		if currentLabel == "" && strings.TrimSpace(joined) == "" {
			current = nil
			return
		}
		sections = append(sections, Section{Header: currentLabel, Text: joined})
		current = nil
	}

	for _, line := range lines {
		if label := config.headerLabel(line); label != "" {
			if len(current) > 0 {
				flush()
			}
			currentLabel = label
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		flush()
	}

	return sections, len(sections) >= 2
}
