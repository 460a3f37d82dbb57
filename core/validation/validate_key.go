package validation

import (
	"fmt"
	"strings"
)

// ValidateAPIKey validates that an API key is non-empty and has reasonable format.
// This is a pure function that does NOT verify the key with any service.
func ValidateAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)

	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	// Basic sanity check - API keys should have some minimum length
	if len(apiKey) < 8 {
		return fmt.Errorf("API key appears invalid: too short (minimum 8 characters)")
	}

	return nil
}

// ValidateOpenAIAPIKey validates the OpenAI API key format.
// Hosted OpenAI keys start with "sk-", but OPENAI_BASE_URL may point at a
// compatible gateway with its own key format, so the prefix is not enforced.
func ValidateOpenAIAPIKey(apiKey string) error {
	return ValidateAPIKey(apiKey)
}
