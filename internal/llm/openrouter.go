package llm

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultGroqBaseURL       = "https://api.groq.com/openai/v1"
	defaultGroqModel         = "llama-3.3-70b-versatile"
)

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Model names are passed through untouched.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	return newCompatProvider(ProviderOpenRouter, cfg.APIKey, orDefault(cfg.BaseURL, defaultOpenRouterBaseURL), cfg.Model, false), nil
}

// NewGroqProvider creates a provider targeting Groq's OpenAI-compatible
// endpoint. Groq only supports JSON object mode, so schema requests fall
// back to it and are validated locally.
func NewGroqProvider(cfg GroqConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}
	model := orDefault(cfg.Model, defaultGroqModel)
	return newCompatProvider(ProviderGroq, cfg.APIKey, orDefault(cfg.BaseURL, defaultGroqBaseURL), model, true), nil
}

func newCompatProvider(name, apiKey, baseURL, model string, jsonObjectOnly bool) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(config),
		model:          model,
		name:           name,
		jsonObjectOnly: jsonObjectOnly,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
