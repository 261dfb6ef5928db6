package llm

import (
	"context"
	"fmt"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelProvider adapts any eino chat model to CompletionProvider.
type ChatModelProvider struct {
	model einoModel.BaseChatModel
}

var _ CompletionProvider = (*ChatModelProvider)(nil)

func NewChatModelProvider(m einoModel.BaseChatModel) *ChatModelProvider {
	return &ChatModelProvider{model: m}
}

func toSchemaMessages(history []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = string(schema.Assistant)
		}
		out = append(out, &schema.Message{
			Role:    schema.RoleType(role),
			Content: msg.Content,
		})
	}
	return out
}

func toModelOptions(opts ...Option) []einoModel.Option {
	options := ApplyOptions(opts...)
	var out []einoModel.Option
	if options.Temperature > 0 {
		out = append(out, einoModel.WithTemperature(float32(options.Temperature)))
	}
	if options.MaxTokens > 0 {
		out = append(out, einoModel.WithMaxTokens(options.MaxTokens))
	}
	if options.Model != "" {
		out = append(out, einoModel.WithModel(options.Model))
	}
	return out
}

func (p *ChatModelProvider) Stream(ctx context.Context, history []Message, opts ...Option) (FragmentStream, error) {
	reader, err := p.model.Stream(ctx, toSchemaMessages(history), toModelOptions(opts...)...)
	if err != nil {
		return nil, fmt.Errorf("open completion stream: %w", err)
	}
	return &messageStream{reader: reader}, nil
}

func (p *ChatModelProvider) Complete(ctx context.Context, history []Message, opts ...Option) (string, error) {
	out, err := p.model.Generate(ctx, toSchemaMessages(history), toModelOptions(opts...)...)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}

type messageStream struct {
	reader *schema.StreamReader[*schema.Message]
}

// Recv passes io.EOF through unwrapped so callers can compare with errors.Is.
func (s *messageStream) Recv() (string, error) {
	chunk, err := s.reader.Recv()
	if err != nil {
		return "", err
	}
	if chunk == nil {
		return "", nil
	}
	return chunk.Content, nil
}

func (s *messageStream) Close() {
	s.reader.Close()
}
