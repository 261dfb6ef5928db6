package openai

import (
	"context"
	"fmt"

	"ai-chat-be/pkg/llm"

	"github.com/cloudwego/eino-ext/components/model/openai"
)

// NewOpenAIProvider talks to the OpenAI chat completions API or any
// compatible endpoint when baseURL is set.
func NewOpenAIProvider(ctx context.Context, baseURL, apiKey, modelName string) (*llm.ChatModelProvider, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
	}
	return llm.NewChatModelProvider(chatModel), nil
}
