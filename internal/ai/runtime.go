package ai

import "context"

// Runtime is implemented by the AI backends (OpenRouter, Gemini, Ollama).
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers accepted by the ai_provider setting.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
)

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderOllama:
		return "llama3.1:8b-instruct"
	default:
		return "openai/gpt-4o-mini"
	}
}
