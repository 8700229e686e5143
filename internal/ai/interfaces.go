package ai

import (
	"context"
)

// GenerationRequest is one prompt-in, text-out call.
type GenerationRequest struct {
	SystemPrompt string
	Prompt       string
}

// TextGenerator is the language model collaborator. Implementations own their
// model, temperature and output length settings.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
