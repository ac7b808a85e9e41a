// Package ai adapts hosted language-model APIs into the engine's generator
// contract. Prompt content lives here, at the adapter edge; the engine core
// knows nothing about models or prompts.
package ai

import "context"

// CompletionRequest represents a prompt to the model.
type CompletionRequest struct {
	Prompt    string
	System    string
	MaxTokens int
}

// CompletionResponse represents the model's answer.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage tracks costs.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Completer is the raw text-in/text-out surface each hosted API implements.
// The Generator wrapper turns a Completer into a generate.Generator.
type Completer interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
