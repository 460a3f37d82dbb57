package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// CompletionMetrics represents metrics collected during an LLM completion call.
// Implements zapcore.ObjectMarshaler for structured logging.
//
// This is a pure data structure with no dependencies on other logging atoms.
//
// Example:
//
//	metrics := CompletionMetrics{
//		Model:            "gpt-4o-mini",
//		PromptTokens:     150,
//		CompletionTokens: 200,
//		TotalTokens:      350,
//		Duration:         2 * time.Second,
//	}
//	logger.Info("completion finished", zap.Object("metrics", metrics))
type CompletionMetrics struct {
	// Model identifies which model produced the completion
	Model string `json:"model"`

	// PromptTokens is the count of tokens in the input prompt
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the count of tokens generated in the response
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the sum of PromptTokens and CompletionTokens
	TotalTokens int `json:"total_tokens"`

	// Duration is the total time taken for the completion call
	Duration time.Duration `json:"duration"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging.
// This allows CompletionMetrics to be logged as a nested JSON object in zap logs.
//
// Duration is encoded in milliseconds for readability.
func (m CompletionMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("model", m.Model)
	enc.AddInt("prompt_tokens", m.PromptTokens)
	enc.AddInt("completion_tokens", m.CompletionTokens)
	enc.AddInt("total_tokens", m.TotalTokens)
	enc.AddInt64("duration_ms", m.Duration.Milliseconds())
	return nil
}
