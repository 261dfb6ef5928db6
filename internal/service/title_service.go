package service

import (
	"context"
	"fmt"
	"strings"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/llm"
)

// ITitleService derives a short chat title from the opening exchange.
// The default implementation never returns an error: every failure resolves
// to a fallback title.
type ITitleService interface {
	GenerateTitle(ctx context.Context, thread []entity.Message) (string, error)
}

type titleService struct {
	provider llm.CompletionProvider
	model    string
	logger   logger.ILogger
}

func NewTitleService(provider llm.CompletionProvider, model string, log logger.ILogger) ITitleService {
	return &titleService{
		provider: provider,
		model:    model,
		logger:   log,
	}
}

func (s *titleService) GenerateTitle(ctx context.Context, thread []entity.Message) (string, error) {
	opening := thread
	if len(opening) > 2 {
		opening = opening[:2]
	}

	var userMsg, assistantMsg *entity.Message
	for i := range opening {
		switch opening[i].Role {
		case entity.MessageRoleUser:
			if userMsg == nil {
				userMsg = &opening[i]
			}
		case entity.MessageRoleAssistant:
			if assistantMsg == nil {
				assistantMsg = &opening[i]
			}
		}
	}

	if len(opening) < 2 || userMsg == nil || assistantMsg == nil {
		return FallbackTitle(thread), nil
	}

	opts := []llm.Option{
		llm.WithTemperature(constant.DefaultTemperature),
		llm.WithMaxTokens(constant.TitleMaxTokens),
	}
	if s.model != "" {
		opts = append(opts, llm.WithModel(s.model))
	}

	raw, err := s.provider.Complete(ctx, []llm.Message{
		{Role: "system", Content: constant.TitleSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(constant.TitleUserPromptTemplate, userMsg.Content, assistantMsg.Content)},
	}, opts...)
	if err != nil {
		s.logger.Warn("TitleService", "Title completion failed, using fallback", map[string]interface{}{
			"chat_id": userMsg.ChatId,
			"error":   err.Error(),
		})
		return FallbackTitle(thread), nil
	}

	title := strings.TrimSpace(raw)
	if title == "" {
		return FallbackTitle(thread), nil
	}
	return truncateTitle(title), nil
}

// FallbackTitle is the first message's content cut to the title limit, or the
// generic fallback when there is nothing to use.
func FallbackTitle(thread []entity.Message) string {
	if len(thread) == 0 {
		return constant.ChatFallbackTitle
	}
	content := strings.TrimSpace(thread[0].Content)
	if content == "" {
		return constant.ChatFallbackTitle
	}
	return truncateTitle(content)
}

// truncateTitle counts runes, not bytes, so multi-byte text is never split.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= constant.ChatTitleMaxLength {
		return title
	}
	keep := constant.ChatTitleMaxLength - len(constant.ChatTitleEllipsis)
	return string(runes[:keep]) + constant.ChatTitleEllipsis
}
