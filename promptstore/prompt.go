// Package promptstore fetches managed system prompts from a
// Langfuse-compatible prompt store.
//
// prompt.go defines the Prompt atom returned by the client and its
// template substitution.
package promptstore

import "strings"

// LanguagePlaceholder is the template variable substituted by Compile.
const LanguagePlaceholder = "{{LANGUAGE}}"

// Prompt is a versioned prompt fetched from the store.
type Prompt struct {
	// Name is the prompt identifier in the store
	Name string

	// Version is the prompt version the label resolved to
	Version int

	// Text is the raw prompt template, possibly containing
	// {{LANGUAGE}} placeholders
	Text string

	// Labels are the deployment labels attached to this version
	Labels []string
}

// Compile substitutes every {{LANGUAGE}} occurrence in the prompt text
// with the given language and returns the result. The Prompt itself is
// not modified.
//
// Example:
//
//	prompt, err := client.GetPrompt(ctx, "paper-pitch")
//	if err != nil {
//	    return err
//	}
//	system := prompt.Compile("french")
func (p Prompt) Compile(language string) string {
	return strings.ReplaceAll(p.Text, LanguagePlaceholder, language)
}
