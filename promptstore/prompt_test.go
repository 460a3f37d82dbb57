package promptstore

import "testing"

func TestPrompt_Compile(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		language string
		want     string
	}{
		{
			name:     "single placeholder",
			text:     "Answer in {{LANGUAGE}}.",
			language: "french",
			want:     "Answer in french.",
		},
		{
			name:     "every occurrence replaced",
			text:     "Write in {{LANGUAGE}}. The summary must be {{LANGUAGE}} only.",
			language: "english",
			want:     "Write in english. The summary must be english only.",
		},
		{
			name:     "no placeholder",
			text:     "Summarize the paper.",
			language: "french",
			want:     "Summarize the paper.",
		},
		{
			name:     "empty text",
			text:     "",
			language: "french",
			want:     "",
		},
		{
			name:     "placeholder requires exact braces",
			text:     "{LANGUAGE} {{ LANGUAGE }} {{LANGUAGE}}",
			language: "german",
			want:     "{LANGUAGE} {{ LANGUAGE }} german",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Prompt{Name: "paper-pitch", Text: tt.text}
			got := p.Compile(tt.language)
			if got != tt.want {
				t.Errorf("Compile(%q) = %q, want %q", tt.language, got, tt.want)
			}
		})
	}
}

func TestPrompt_Compile_DoesNotMutate(t *testing.T) {
	p := Prompt{Text: "Pitch in {{LANGUAGE}}."}
	_ = p.Compile("french")
	if p.Text != "Pitch in {{LANGUAGE}}." {
		t.Errorf("Compile mutated the prompt text: %q", p.Text)
	}
}
