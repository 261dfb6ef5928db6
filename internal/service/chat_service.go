package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/llm"
)

// IChatService runs one chat turn. BeginTurn performs everything that can
// still fail with a clean error response; the returned Turn is then relayed
// to the client fragment by fragment.
type IChatService interface {
	BeginTurn(ctx context.Context, req *dto.SendChatRequest) (*Turn, error)
}

type chatService struct {
	messageService IMessageService
	titleService   ITitleService
	provider       llm.CompletionProvider
	model          string
	logger         logger.ILogger
}

func NewChatService(
	messageService IMessageService,
	titleService ITitleService,
	provider llm.CompletionProvider,
	model string,
	log logger.ILogger,
) IChatService {
	return &chatService{
		messageService: messageService,
		titleService:   titleService,
		provider:       provider,
		model:          model,
		logger:         log,
	}
}

// Turn is an opened completion stream for one chat. It is single-use.
type Turn struct {
	svc    *chatService
	chatId string
	stream llm.FragmentStream
}

// TurnResult describes what a relayed turn produced.
type TurnResult struct {
	Content string
	Message *entity.Message
	Chat    *entity.Chat
}

func (s *chatService) BeginTurn(ctx context.Context, req *dto.SendChatRequest) (*Turn, error) {
	if len(req.Messages) == 0 {
		return nil, ErrEmptyTurns
	}

	history := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if !entity.MessageRole(m.Role).Valid() {
			return nil, ErrInvalidRole
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	last := req.Messages[len(req.Messages)-1]
	if entity.MessageRole(last.Role) == entity.MessageRoleUser {
		if _, err := s.messageService.SaveMessage(ctx, req.ChatId, entity.MessageRoleUser, last.Content); err != nil {
			return nil, fmt.Errorf("save user message: %w", err)
		}
	}

	opts := []llm.Option{llm.WithTemperature(constant.DefaultTemperature)}
	if s.model != "" {
		opts = append(opts, llm.WithModel(s.model))
	}

	stream, err := s.provider.Stream(ctx, history, opts...)
	if err != nil {
		return nil, fmt.Errorf("open completion: %w", err)
	}

	return &Turn{svc: s, chatId: req.ChatId, stream: stream}, nil
}

func (t *Turn) ChatId() string {
	return t.chatId
}

// Relay drains the completion stream, handing every non-empty fragment to
// emit in arrival order. On a clean end of stream the accumulated text is
// persisted as the assistant message and the chat record is created if this
// was its first full exchange.
//
// A failing stream returns ErrStreamFailed, a failing emit returns
// ErrClientGone. In both cases nothing is persisted for the partial reply.
func (t *Turn) Relay(ctx context.Context, emit func(fragment string) error) (*TurnResult, error) {
	defer t.stream.Close()

	var acc strings.Builder
	result := &TurnResult{}

	for {
		if err := ctx.Err(); err != nil {
			result.Content = acc.String()
			return result, fmt.Errorf("%w: %v", ErrClientGone, err)
		}

		fragment, err := t.stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Content = acc.String()
			return result, fmt.Errorf("%w: %v", ErrStreamFailed, err)
		}
		if fragment == "" {
			continue
		}

		acc.WriteString(fragment)
		if err := emit(fragment); err != nil {
			result.Content = acc.String()
			return result, fmt.Errorf("%w: %v", ErrClientGone, err)
		}
	}

	result.Content = acc.String()
	if result.Content == "" {
		return result, nil
	}

	msg, err := t.svc.messageService.SaveMessage(ctx, t.chatId, entity.MessageRoleAssistant, result.Content)
	if err != nil {
		return result, fmt.Errorf("save assistant message: %w", err)
	}
	result.Message = msg

	result.Chat = t.svc.ensureChat(ctx, t.chatId)
	return result, nil
}

// ensureChat creates the chat record after its first full exchange. Failures
// here are logged only: the reply is already delivered and stored.
func (s *chatService) ensureChat(ctx context.Context, chatId string) *entity.Chat {
	exists, err := s.messageService.ChatExists(ctx, chatId)
	if err != nil {
		s.logger.Error("ChatService", "Failed to check chat existence", map[string]interface{}{
			"chat_id": chatId,
			"error":   err,
		})
		return nil
	}
	if exists {
		return nil
	}

	title := constant.ChatFallbackTitle
	thread, err := s.messageService.GetMessagesByChatId(ctx, chatId)
	if err != nil {
		s.logger.Warn("ChatService", "Failed to load thread for title", map[string]interface{}{
			"chat_id": chatId,
			"error":   err.Error(),
		})
	} else {
		if len(thread) < 2 {
			return nil
		}
		if generated, err := s.titleService.GenerateTitle(ctx, thread); err != nil {
			s.logger.Warn("ChatService", "Title generation failed", map[string]interface{}{
				"chat_id": chatId,
				"error":   err.Error(),
			})
		} else if strings.TrimSpace(generated) != "" {
			title = generated
		}
	}

	chat, err := s.messageService.CreateChat(ctx, chatId, title)
	if err != nil {
		s.logger.Error("ChatService", "Failed to create chat", map[string]interface{}{
			"chat_id": chatId,
			"error":   err,
		})
		return nil
	}
	return chat
}
