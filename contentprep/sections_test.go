package contentprep

import (
	"strings"
	"testing"
)

func TestDefaultSplitterConfig(t *testing.T) {
	config := DefaultSplitterConfig()

	if len(config.HeaderVocabulary) == 0 {
		t.Error("HeaderVocabulary should not be empty")
	}
	if config.MaxHeaderLength != 100 {
		t.Errorf("MaxHeaderLength = %d, want 100", config.MaxHeaderLength)
	}
	if len(config.PrioritySections) != 3 {
		t.Errorf("PrioritySections length = %d, want 3", len(config.PrioritySections))
	}
	for _, want := range []string{"abstract", "introduction", "conclusion"} {
		if !config.isPriority(want) {
			t.Errorf("isPriority(%q) = false, want true", want)
		}
	}
	if config.isPriority("methodology") {
		t.Error("isPriority(\"methodology\") = true, want false")
	}
	if config.isPriority("") {
		t.Error("isPriority(\"\") = true, want false")
	}
}

func TestSplitSections_StructuredPaper(t *testing.T) {
	text := strings.Join([]string{
		"A Study of Things",
		"",
		"Abstract",
		"We study things and report findings.",
		"",
		"Methodology",
		"We did the work carefully.",
		"",
		"Conclusion",
		"Things were studied.",
	}, "\n")

	sections, structured := SplitSections(text, DefaultSplitterConfig())

	if !structured {
		t.Fatal("structured = false, want true")
	}
	if len(sections) != 4 {
		t.Fatalf("sections length = %d, want 4", len(sections))
	}

	wantHeaders := []string{"", "abstract", "methodology", "conclusion"}
	for i, want := range wantHeaders {
		if sections[i].Header != want {
			t.Errorf("sections[%d].Header = %q, want %q", i, sections[i].Header, want)
		}
	}

	// The leading untagged section holds the title lines.
	if !strings.Contains(sections[0].Text, "A Study of Things") {
		t.Errorf("leading section text = %q, want title", sections[0].Text)
	}
	// Each tagged section includes its header line and its body.
	if !strings.Contains(sections[1].Text, "Abstract") {
		t.Error("abstract section should contain its header line")
	}
	if !strings.Contains(sections[1].Text, "report findings") {
		t.Error("abstract section should contain its body")
	}
}

func TestSplitSections_HeaderStartsDocument(t *testing.T) {
	text := "Abstract\nShort paper.\n\nConclusion\nDone."

	sections, structured := SplitSections(text, DefaultSplitterConfig())

	if !structured {
		t.Fatal("structured = false, want true")
	}
	if len(sections) != 2 {
		t.Fatalf("sections length = %d, want 2", len(sections))
	}
	if sections[0].Header != "abstract" {
		t.Errorf("sections[0].Header = %q, want %q", sections[0].Header, "abstract")
	}
	if sections[1].Header != "conclusion" {
		t.Errorf("sections[1].Header = %q, want %q", sections[1].Header, "conclusion")
	}
}

func TestSplitSections_ProseLineIsNotHeader(t *testing.T) {
	// A long prose sentence mentioning a vocabulary word must not start a
	// section; only short lines qualify as headers.
	longProse := "In the introduction of every good paper the authors lay out the motivation at considerable length and detail."
	if len(longProse) < 100 {
		t.Fatalf("test prose must be at least 100 chars, is %d", len(longProse))
	}

	text := longProse + "\nMore plain prose follows here."

	sections, structured := SplitSections(text, DefaultSplitterConfig())

	if structured {
		t.Error("structured = true, want false")
	}
	if len(sections) != 1 {
		t.Fatalf("sections length = %d, want 1", len(sections))
	}
	if sections[0].Header != "" {
		t.Errorf("sections[0].Header = %q, want untagged", sections[0].Header)
	}
}

func TestSplitSections_CaseInsensitive(t *testing.T) {
	text := "ABSTRACT\nBody.\n\n1. INTRODUCTION\nMore body.\n\nConclusion and Future Work\nEnd."

	sections, structured := SplitSections(text, DefaultSplitterConfig())

	if !structured {
		t.Fatal("structured = false, want true")
	}
	wantHeaders := []string{"abstract", "introduction", "conclusion"}
	if len(sections) != len(wantHeaders) {
		t.Fatalf("sections length = %d, want %d", len(sections), len(wantHeaders))
	}
	for i, want := range wantHeaders {
		if sections[i].Header != want {
			t.Errorf("sections[%d].Header = %q, want %q", i, sections[i].Header, want)
		}
	}
}

func TestSplitSections_Unstructured(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "plain paragraph",
			text: "Just a single unbroken paragraph with no recognizable headers at all.",
		},
		{
			name: "single header only",
			text: "Abstract\nOne section is not enough structure.",
		},
		{
			name: "empty",
			text: "",
		},
		{
			name: "whitespace only",
			text: "  \n\t\n  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, structured := SplitSections(tt.text, DefaultSplitterConfig())
			if structured {
				t.Error("structured = true, want false")
			}
		})
	}
}

func TestSplitSections_EmptyTextHasNoSections(t *testing.T) {
	sections, _ := SplitSections("", DefaultSplitterConfig())
	if len(sections) != 0 {
		t.Errorf("sections length = %d, want 0", len(sections))
	}
}

func TestSplitSections_FirstVocabularyMatchWins(t *testing.T) {
	text := "Intro text here.\n\nResults and Discussion\nFindings.\n\nReferences\n[1] A paper."

	sections, structured := SplitSections(text, DefaultSplitterConfig())

	if !structured {
		t.Fatal("structured = false, want true")
	}
	var labels []string
	for _, sec := range sections {
		labels = append(labels, sec.Header)
	}
	// "Results and Discussion" labels by the earlier vocabulary word.
	want := []string{"", "results", "references"}
	if len(labels) != len(want) {
		t.Fatalf("headers = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestSplitSections_CustomVocabulary(t *testing.T) {
	config := SplitterConfig{
		HeaderVocabulary: []string{"summary", "appendix"},
		MaxHeaderLength:  100,
	}

	text := "Summary\nShort version.\n\nAbstract\nNot a header under this vocabulary.\n\nAppendix\nExtra."

	sections, structured := SplitSections(text, config)

	if !structured {
		t.Fatal("structured = false, want true")
	}
	if len(sections) != 2 {
		t.Fatalf("sections length = %d, want 2", len(sections))
	}
	if sections[0].Header != "summary" {
		t.Errorf("sections[0].Header = %q, want %q", sections[0].Header, "summary")
	}
	// The unrecognized "Abstract" line stays inside the summary section.
	if !strings.Contains(sections[0].Text, "Abstract") {
		t.Error("summary section should absorb the unrecognized header line")
	}
	if sections[1].Header != "appendix" {
		t.Errorf("sections[1].Header = %q, want %q", sections[1].Header, "appendix")
	}
}

func TestSplitSections_ReconstructsText(t *testing.T) {
	// Joining the section texts in order with newlines reproduces the
	// original document: splitting loses nothing.
	text := "Title line\n\nAbstract\nBody a.\n\nMethods\nBody m.\n\nConclusion\nBody c."

	sections, structured := SplitSections(text, DefaultSplitterConfig())
	if !structured {
		t.Fatal("structured = false, want true")
	}

	var parts []string
	for _, sec := range sections {
		parts = append(parts, sec.Text)
	}
	if got := strings.Join(parts, "\n"); got != text {
		t.Errorf("joined sections = %q, want original %q", got, text)
	}
}
