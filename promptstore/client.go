// Package promptstore fetches managed system prompts from a
// Langfuse-compatible prompt store.
//
// client.go implements the Client molecule that speaks the store's
// public REST API. It composes:
//   - prompt.go: the Prompt atom returned to callers
//
// Prompts are resolved by name and deployment label over
// GET {base}/api/public/v2/prompts/{name}?label={label} with Basic auth.
package promptstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the hosted prompt store used when no base URL is
// configured.
const DefaultBaseURL = "https://cloud.langfuse.com"

// DefaultLabel is the deployment label resolved when none is configured.
const DefaultLabel = "production"

// ErrNotFound is returned when the store has no prompt for the
// requested name and label.
var ErrNotFound = errors.New("promptstore: prompt not found")

// APIError reports a non-success response from the store. Callers can
// inspect StatusCode to distinguish rejected credentials (401/403) from
// server-side failures.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("promptstore: store returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("promptstore: store returned status %d: %s", e.StatusCode, e.Detail)
}

// ClientConfig holds configuration for the prompt store client.
type ClientConfig struct {
	// BaseURL is the store endpoint
	// Default: DefaultBaseURL
	BaseURL string

	// PublicKey and SecretKey form the Basic auth credential pair
	PublicKey string
	SecretKey string

	// Label is the deployment label to resolve
	// Default: DefaultLabel
	Label string

	// HTTPClient is the HTTP client for requests (optional)
	// If nil, a default client with Timeout is created
	HTTPClient *http.Client

	// Timeout for fetch requests when HTTPClient is nil
	// Default: 30 seconds
	Timeout time.Duration
}

// Client fetches prompts from a Langfuse-compatible store.
//
// Thread Safety: Client is safe for concurrent use.
type Client struct {
	baseURL   string
	publicKey string
	secretKey string
	label     string
	client    *http.Client
	logger    *zap.Logger
}

// promptResponse mirrors the store's prompt payload. The prompt field
// is raw because chat prompts carry an array there instead of a string.
type promptResponse struct {
	Name    string          `json:"name"`
	Version int             `json:"version"`
	Type    string          `json:"type"`
	Prompt  json.RawMessage `json:"prompt"`
	Labels  []string        `json:"labels"`
}

// NewClient creates a prompt store client.
//
// Parameters:
//   - config: ClientConfig with credentials and endpoint
//   - logger: structured logger (nil disables logging)
//
// Both keys are required; a store with partial credentials is a
// misconfiguration the config layer rejects earlier.
func NewClient(config ClientConfig, logger *zap.Logger) (*Client, error) {
	if config.PublicKey == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("promptstore: public and secret keys are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	label := config.Label
	if label == "" {
		label = DefaultLabel
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		publicKey: config.PublicKey,
		secretKey: config.SecretKey,
		label:     label,
		client:    httpClient,
		logger:    logger,
	}, nil
}

// Label returns the deployment label this client resolves.
func (c *Client) Label() string {
	return c.label
}

// GetPrompt fetches the prompt with the given name at the client's
// configured label.
//
// Returns ErrNotFound (wrapped) when the store has no matching prompt,
// an *APIError for other non-success responses, and an error for
// chat-type prompts since the pipeline composes its own message list
// around a single system prompt text.
func (c *Client) GetPrompt(ctx context.Context, name string) (Prompt, error) {
	if name == "" {
		return Prompt{}, fmt.Errorf("promptstore: prompt name cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/api/public/v2/prompts/%s?label=%s",
		c.baseURL, url.PathEscape(name), url.QueryEscape(c.label))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Prompt{}, fmt.Errorf("promptstore: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Prompt{}, fmt.Errorf("promptstore: fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Prompt{}, fmt.Errorf("%w: %q (label %q)", ErrNotFound, name, c.label)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Prompt{}, &APIError{
			StatusCode: resp.StatusCode,
			Detail:     strings.TrimSpace(string(detail)),
		}
	}

	var pr promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Prompt{}, fmt.Errorf("promptstore: failed to decode response: %w", err)
	}

	var text string
	if err := json.Unmarshal(pr.Prompt, &text); err != nil {
		return Prompt{}, fmt.Errorf("promptstore: prompt %q is type %q, expected a text prompt", name, pr.Type)
	}

	c.logger.Debug("fetched prompt",
		zap.String("name", pr.Name),
		zap.Int("version", pr.Version),
		zap.String("label", c.label))

	return Prompt{
		Name:    pr.Name,
		Version: pr.Version,
		Text:    text,
		Labels:  pr.Labels,
	}, nil
}
