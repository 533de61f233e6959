package llm

import (
	"context"
	"fmt"
)

// Request is one chat-style completion request: a fixed system persona plus a
// user message carrying the task prompt and the report text.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Client is an abstraction over LLM providers.
type Client interface {
	// Complete issues one request and returns the generated message text.
	Complete(ctx context.Context, req Request) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a new LLM client for the given provider.
func NewClient(ctx context.Context, provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
