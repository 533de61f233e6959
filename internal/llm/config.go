// Package llm provides centralized LLM configuration and client abstractions.
// The pipeline talks to exactly one provider per run, selected by config.
package llm

import "fmt"

// Provider represents an LLM provider.
type Provider string

// Provider constants define supported LLM providers.
const (
	// ProviderOpenAI is the OpenAI chat-completions provider (default).
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini Provider = "gemini"
)

// DefaultProvider is used when no provider is configured.
const DefaultProvider = ProviderOpenAI

// ParseProvider validates a provider name from config or CLI flags.
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case ProviderOpenAI, ProviderGemini:
		return Provider(name), nil
	case "":
		return DefaultProvider, nil
	}
	return "", fmt.Errorf("unknown provider %q (expected \"openai\" or \"gemini\")", name)
}

// APIKeyEnvVar returns the environment variable the provider's key is read
// from when not passed explicitly.
func (p Provider) APIKeyEnvVar() string {
	if p == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
