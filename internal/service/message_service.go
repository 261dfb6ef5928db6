package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/cache"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"

	"golang.org/x/sync/singleflight"
)

// IMessageService is the persistence gateway for messages and chats. Thread
// reads go through the look-aside cache; every write that changes a thread
// invalidates it.
type IMessageService interface {
	SaveMessage(ctx context.Context, chatId string, role entity.MessageRole, content string) (*entity.Message, error)
	GetMessagesByChatId(ctx context.Context, chatId string) ([]entity.Message, error)
	GetRecentMessagesByChatId(ctx context.Context, chatId string, limit int) ([]entity.Message, error)
	GetMessagesByRole(ctx context.Context, chatId string, role entity.MessageRole) ([]entity.Message, error)
	ClearChatMessages(ctx context.Context, chatId string) error

	ChatExists(ctx context.Context, chatId string) (bool, error)
	CreateChat(ctx context.Context, chatId string, title string) (*entity.Chat, error)
	GetChatById(ctx context.Context, chatId string) (*entity.Chat, error)
	GetAllChats(ctx context.Context) ([]entity.Chat, error)
	UpdateChatTitle(ctx context.Context, chatId string, title string) (*entity.Chat, error)
	DeleteChat(ctx context.Context, chatId string) error
}

type messageService struct {
	uowFactory       unitofwork.RepositoryFactory
	threadCache      cache.ThreadCache
	threadTTL        time.Duration
	publisherService IPublisherService
	logger           logger.ILogger

	loads   singleflight.Group
	threads sync.Map // chatId -> *threadState
}

// threadState orders cache fills against writes for one chat. gen is bumped
// on every write; a load that started under an older gen neither shares its
// result with newer readers nor populates the cache. The gen check plus Set
// and the bump plus Invalidate both run under mu.
type threadState struct {
	mu  sync.Mutex
	gen uint64
}

func (t *threadState) current() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

func (s *messageService) thread(chatId string) *threadState {
	if st, ok := s.threads.Load(chatId); ok {
		return st.(*threadState)
	}
	st, _ := s.threads.LoadOrStore(chatId, &threadState{})
	return st.(*threadState)
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	threadCache cache.ThreadCache,
	threadTTL time.Duration,
	publisherService IPublisherService,
	log logger.ILogger,
) IMessageService {
	if threadTTL <= 0 {
		threadTTL = constant.MessageThreadTTL
	}
	return &messageService{
		uowFactory:       uowFactory,
		threadCache:      threadCache,
		threadTTL:        threadTTL,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *messageService) SaveMessage(ctx context.Context, chatId string, role entity.MessageRole, content string) (*entity.Message, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	msg := entity.Message{
		ChatId:  chatId,
		Role:    role,
		Content: content,
	}
	if err := uow.MessageRepository().Create(ctx, &msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	s.invalidateThread(ctx, chatId)
	return &msg, nil
}

func (s *messageService) GetMessagesByChatId(ctx context.Context, chatId string) ([]entity.Message, error) {
	if thread, ok := s.threadCache.Get(ctx, chatId); ok {
		return thread, nil
	}

	st := s.thread(chatId)
	gen := st.current()
	key := chatId + "#" + strconv.FormatUint(gen, 10)

	// The load is shared, so one caller going away must not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(key, func() (interface{}, error) {
		uow := s.uowFactory.NewUnitOfWork(loadCtx)
		thread, err := uow.MessageRepository().FindAll(loadCtx,
			specification.ByChatID{ChatID: chatId},
			specification.ThreadOrder{},
		)
		if err != nil {
			return nil, err
		}

		// Empty threads are not cached so a chat's first message is never
		// hidden behind a stale empty entry.
		if len(thread) > 0 {
			st.mu.Lock()
			if st.gen == gen {
				s.threadCache.Set(loadCtx, chatId, thread, s.threadTTL)
			}
			st.mu.Unlock()
		}
		return thread, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("load thread: %w", ctx.Err())
	}
	if res.Err != nil {
		return nil, fmt.Errorf("load thread: %w", res.Err)
	}

	shared := res.Val.([]entity.Message)
	thread := make([]entity.Message, len(shared))
	copy(thread, shared)
	return thread, nil
}

// GetRecentMessagesByChatId returns the last limit messages of a thread in
// chronological order. It always reads the store.
func (s *messageService) GetRecentMessagesByChatId(ctx context.Context, chatId string, limit int) ([]entity.Message, error) {
	if limit <= 0 {
		limit = constant.DefaultRecentMessagesLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	latest, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.LatestMessagesFirst{},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, fmt.Errorf("load recent messages: %w", err)
	}

	for i, j := 0, len(latest)-1; i < j; i, j = i+1, j-1 {
		latest[i], latest[j] = latest[j], latest[i]
	}
	return latest, nil
}

func (s *messageService) GetMessagesByRole(ctx context.Context, chatId string, role entity.MessageRole) ([]entity.Message, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.ByRole{Role: string(role)},
		specification.ThreadOrder{},
	)
	if err != nil {
		return nil, fmt.Errorf("load messages by role: %w", err)
	}
	return messages, nil
}

func (s *messageService) ClearChatMessages(ctx context.Context, chatId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MessageRepository().DeleteByChatId(ctx, chatId); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	s.invalidateThread(ctx, chatId)
	return nil
}

func (s *messageService) ChatExists(ctx context.Context, chatId string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChatRepository().Count(ctx, specification.ByChatID{ChatID: chatId})
	if err != nil {
		return false, fmt.Errorf("check chat: %w", err)
	}
	return count > 0, nil
}

// CreateChat is idempotent: when the chat already exists the stored record is
// returned unchanged and no event is published.
func (s *messageService) CreateChat(ctx context.Context, chatId string, title string) (*entity.Chat, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat := entity.Chat{
		ChatId: chatId,
		Title:  title,
	}

	created, err := uow.ChatRepository().CreateIfAbsent(ctx, &chat)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	if created {
		s.logger.Info("MessageService", "Chat created", map[string]interface{}{
			"chat_id": chat.ChatId,
			"title":   chat.Title,
		})
		s.publisherService.PublishChatEvent(ctx, constant.EventChatCreated, chat)
	}
	return &chat, nil
}

func (s *messageService) GetChatById(ctx context.Context, chatId string) (*entity.Chat, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByChatID{ChatID: chatId})
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

func (s *messageService) GetAllChats(ctx context.Context) ([]entity.Chat, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindAll(ctx, specification.NewestChatsFirst{})
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (s *messageService) UpdateChatTitle(ctx context.Context, chatId string, title string) (*entity.Chat, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().UpdateTitle(ctx, chatId, title)
	if err != nil {
		return nil, fmt.Errorf("update chat title: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	s.publisherService.PublishChatEvent(ctx, constant.EventChatUpdated, *chat)
	return chat, nil
}

// DeleteChat removes the chat and its whole thread in one transaction.
func (s *messageService) DeleteChat(ctx context.Context, chatId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByChatID{ChatID: chatId})
	if err != nil {
		return fmt.Errorf("load chat: %w", err)
	}
	if chat == nil {
		return ErrChatNotFound
	}

	if err := uow.MessageRepository().DeleteByChatId(ctx, chatId); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := uow.ChatRepository().Delete(ctx, chatId); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.invalidateThread(ctx, chatId)
	s.publisherService.PublishChatEvent(ctx, constant.EventChatDeleted, *chat)
	return nil
}

func (s *messageService) invalidateThread(ctx context.Context, chatId string) {
	st := s.thread(chatId)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gen++
	s.threadCache.Invalidate(ctx, chatId)
}
