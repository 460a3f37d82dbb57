// Package llm wraps the OpenAI chat completions API behind a small
// client the report pipeline injects and fakes in tests.
//
// client.go implements the Client molecule. It composes:
//   - sashabaranov/go-openai: transport and wire types
//
// The wrapper exists so callers depend on pipeline-shaped types
// (Message, Request, Response) instead of the SDK's.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Message roles understood by the chat API.
const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

// ErrNoMessages is returned when a request carries no messages.
var ErrNoMessages = errors.New("llm: no messages provided")

// ErrEmptyResponse is returned when the model returns no usable content.
var ErrEmptyResponse = errors.New("llm: model returned empty response")

// Message is a single chat message.
type Message struct {
	Role    string
	Content string
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Request describes one chat completion call.
type Request struct {
	// Model is the target chat model, e.g. "gpt-4o-mini"
	Model string

	// Messages are sent in order; typically one system message
	// followed by one user message
	Messages []Message
}

// Usage reports token consumption as measured by the API.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the outcome of a chat completion call.
type Response struct {
	// Content is the generated text
	Content string

	// Model is the model the API actually served
	Model string

	// Usage is the API-reported token accounting
	Usage Usage

	// Duration is the wall-clock time of the call
	Duration time.Duration
}

// ClientConfig holds configuration for the completion client.
type ClientConfig struct {
	// APIKey authenticates against the API (required)
	APIKey string

	// BaseURL overrides the API endpoint for compatible gateways
	// (optional)
	BaseURL string

	// Temperature controls response randomness
	// Default: 0.3
	Temperature float32

	// MaxTokens caps the response length (0 lets the API decide)
	MaxTokens int

	// HTTPClient is the HTTP client for API calls (optional)
	HTTPClient *http.Client
}

// DefaultClientConfig returns sensible defaults for report generation.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Temperature: 0.3,
	}
}

// Client calls the chat completions API.
//
// Thread Safety: Client is safe for concurrent use.
type Client struct {
	client      *openai.Client
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewClient creates a completion client.
//
// Parameters:
//   - config: ClientConfig with the API key and optional overrides
//   - logger: structured logger (nil disables logging)
func NewClient(config ClientConfig, logger *zap.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("llm: API key cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = DefaultClientConfig().Temperature
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		temperature: temperature,
		maxTokens:   config.MaxTokens,
		logger:      logger,
	}, nil
}

// Complete sends the request and returns the generated text with usage
// accounting.
//
// Example:
//
//	resp, err := client.Complete(ctx, llm.Request{
//	    Model: "gpt-4o-mini",
//	    Messages: []llm.Message{
//	        llm.SystemMessage(systemPrompt),
//	        llm.UserMessage(paperText),
//	    },
//	})
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("llm: model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: chat completion failed: %w", err)
	}
	duration := time.Since(start)

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResponse
	}

	c.logger.Debug("chat completion finished",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", duration))

	return &Response{
		Content: content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Duration: duration,
	}, nil
}
