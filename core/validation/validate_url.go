package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateServerURL validates that a service URL has a usable format with
// an http or https scheme. This is a pure function with no side effects.
//
// Returns nil if the URL is valid, or an error describing the validation failure.
func ValidateServerURL(serverURL string) error {
	serverURL = strings.TrimSpace(serverURL)

	if serverURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got: %q", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}
