package ollama

import (
	"context"
	"fmt"

	"ai-chat-be/pkg/llm"

	"github.com/cloudwego/eino-ext/components/model/ollama"
)

const DefaultBaseURL = "http://localhost:11434"

func NewOllamaProvider(ctx context.Context, baseURL, modelName string) (*llm.ChatModelProvider, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: baseURL,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama model: %w", err)
	}
	return llm.NewChatModelProvider(chatModel), nil
}
