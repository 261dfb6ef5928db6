package factory

import (
	"context"
	"fmt"

	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/llm/ollama"
	"ai-chat-be/pkg/llm/openai"
)

type Config struct {
	Provider      string
	Model         string
	BaseURL       string
	APIKey        string
	OllamaBaseURL string
}

func NewCompletionProvider(ctx context.Context, cfg Config) (llm.CompletionProvider, error) {
	switch cfg.Provider {
	case "openai", "":
		provider, err := openai.NewOpenAIProvider(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		provider, err := ollama.NewOllamaProvider(ctx, baseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
