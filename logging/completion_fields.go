// Package logging provides structured logging utilities for the PaperPitch application.
// This file contains molecule-level helper functions that compose CompletionMetrics
// atoms into convenient zap.Field helpers for structured logging.
package logging

import (
	"time"

	"go.uber.org/zap"
)

// CompletionFields creates a structured zap field from completion metrics.
// This is a molecule that composes the CompletionMetrics atom into a ready-to-use zap.Field.
//
// Example:
//
//	metrics := logging.CompletionMetrics{
//		Model:            "gpt-4o-mini",
//		PromptTokens:     150,
//		CompletionTokens: 200,
//		TotalTokens:      350,
//		Duration:         2 * time.Second,
//	}
//	logger.Info("completion finished", logging.CompletionFields(metrics))
func CompletionFields(metrics CompletionMetrics) zap.Field {
	return zap.Object("completion", metrics)
}

// TokenFields creates a slice of zap fields for token counts.
// This is a convenience function for logging token metrics without a full CompletionMetrics struct.
//
// Example:
//
//	logger.Info("token usage", logging.TokenFields(150, 200, 350)...)
func TokenFields(prompt, completion, total int) []zap.Field {
	return []zap.Field{
		zap.Int("prompt_tokens", prompt),
		zap.Int("completion_tokens", completion),
		zap.Int("total_tokens", total),
	}
}

// TimingFields creates a slice of zap fields for stage timing.
// This is a convenience function for logging timing metrics with automatic duration calculation.
//
// Example:
//
//	start := time.Now()
//	// ... perform the stage ...
//	logger.Info("timing", logging.TimingFields(start, time.Now())...)
func TimingFields(startTime, endTime time.Time) []zap.Field {
	return []zap.Field{
		zap.Time("start_time", startTime),
		zap.Time("end_time", endTime),
		zap.Duration("duration", endTime.Sub(startTime)),
	}
}
