package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paperpitch/core"
	"paperpitch/promptstore"
)

// PromptAccessResult represents the result of a prompt store access check.
type PromptAccessResult struct {
	Accessible bool
	Version    int
	Message    string
	Error      error
}

// PromptStoreChecker verifies that the configured prompt store accepts the
// credential pair and serves the pipeline's prompt. This is a molecule that
// composes credential validation with an actual prompt fetch.
type PromptStoreChecker struct {
	timeout              time.Duration
	allowSelfSignedCerts bool
}

// NewPromptStoreChecker creates a new PromptStoreChecker with default settings.
// Default timeout is 30 seconds.
func NewPromptStoreChecker() *PromptStoreChecker {
	return &PromptStoreChecker{
		timeout:              30 * time.Second,
		allowSelfSignedCerts: false,
	}
}

// WithTimeout sets the timeout for prompt store checks.
func (c *PromptStoreChecker) WithTimeout(timeout time.Duration) *PromptStoreChecker {
	c.timeout = timeout
	return c
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (c *PromptStoreChecker) WithAllowSelfSignedCerts(allow bool) *PromptStoreChecker {
	c.allowSelfSignedCerts = allow
	return c
}

// CheckPromptAccess verifies that the credentials can fetch the named
// prompt from the store. A missing prompt with working credentials is
// reported as accessible with the wrapped not-found error attached, since
// the store itself answered.
//
// Parameters:
//   - baseURL: the store endpoint (empty uses the hosted default)
//   - publicKey, secretKey: the Basic auth credential pair
//   - name: the prompt to fetch
//   - label: the deployment label to resolve
func (c *PromptStoreChecker) CheckPromptAccess(baseURL, publicKey, secretKey, name, label string) PromptAccessResult {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.CheckPromptAccessWithContext(ctx, baseURL, publicKey, secretKey, name, label)
}

// CheckPromptAccessWithContext verifies prompt access with a custom context.
func (c *PromptStoreChecker) CheckPromptAccessWithContext(ctx context.Context, baseURL, publicKey, secretKey, name, label string) PromptAccessResult {
	if publicKey == "" && secretKey == "" {
		return PromptAccessResult{
			Accessible: false,
			Message:    "Prompt store credentials not configured",
			Error:      core.ErrMissingAuth("langfuse"),
		}
	}
	if publicKey == "" || secretKey == "" {
		return PromptAccessResult{
			Accessible: false,
			Message:    "Prompt store credentials incomplete",
			Error:      core.ErrIncompleteAuth("langfuse", "LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY must be set together"),
		}
	}

	client, err := promptstore.NewClient(promptstore.ClientConfig{
		BaseURL:    baseURL,
		PublicKey:  publicKey,
		SecretKey:  secretKey,
		Label:      label,
		HTTPClient: createHTTPClient(c.timeout, c.allowSelfSignedCerts),
	}, nil)
	if err != nil {
		return PromptAccessResult{
			Accessible: false,
			Message:    "Prompt store client rejected configuration",
			Error:      err,
		}
	}

	prompt, err := client.GetPrompt(ctx, name)
	if err != nil {
		if errors.Is(err, promptstore.ErrNotFound) {
			// Credentials work, the store answered, only the prompt name
			// has nothing behind it.
			return PromptAccessResult{
				Accessible: true,
				Message:    fmt.Sprintf("Credentials valid but prompt %q not found at label %q", name, client.Label()),
				Error:      err,
			}
		}

		var apiErr *promptstore.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case 401:
				return PromptAccessResult{
					Accessible: false,
					Message:    "Authentication failed: invalid credentials",
					Error:      core.ErrAuthFailed("langfuse", "invalid public/secret key pair"),
				}
			case 403:
				return PromptAccessResult{
					Accessible: false,
					Message:    "Authentication failed: access denied",
					Error:      core.ErrAuthFailed("langfuse", "access denied, check project permissions"),
				}
			default:
				return PromptAccessResult{
					Accessible: false,
					Message:    fmt.Sprintf("Store error: %d", apiErr.StatusCode),
					Error:      core.ErrServiceUnreachable("langfuse", baseURL, apiErr.Error()),
				}
			}
		}

		// Network or other error
		return PromptAccessResult{
			Accessible: false,
			Message:    "Connection failed",
			Error:      core.ErrServiceUnreachable("langfuse", baseURL, err.Error()),
		}
	}

	return PromptAccessResult{
		Accessible: true,
		Version:    prompt.Version,
		Message:    fmt.Sprintf("Prompt %q v%d available", prompt.Name, prompt.Version),
	}
}

// CheckConfiguredStore verifies prompt access using environment variables.
// Uses LANGFUSE_PUBLIC_KEY, LANGFUSE_SECRET_KEY, LANGFUSE_BASE_URL,
// PROMPT_NAME, and PROMPT_LABEL.
func (c *PromptStoreChecker) CheckConfiguredStore() PromptAccessResult {
	return c.CheckPromptAccess(
		core.GetEnvOrDefault("LANGFUSE_BASE_URL", core.DefaultLangfuseBaseURL),
		core.GetEnvOrDefault("LANGFUSE_PUBLIC_KEY", ""),
		core.GetEnvOrDefault("LANGFUSE_SECRET_KEY", ""),
		core.GetEnvOrDefault("PROMPT_NAME", "paper-pitch"),
		core.GetEnvOrDefault("PROMPT_LABEL", "production"),
	)
}

// IsAccessible is a convenience function to check if the prompt is
// fetchable with the given credentials. Returns true only when the prompt
// itself was retrieved.
func (c *PromptStoreChecker) IsAccessible(baseURL, publicKey, secretKey, name, label string) bool {
	result := c.CheckPromptAccess(baseURL, publicKey, secretKey, name, label)
	return result.Accessible && result.Error == nil
}
