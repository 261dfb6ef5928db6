package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/cache"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/database"
	"ai-chat-be/pkg/llm"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.NewGormDB(database.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newRedisThreadCache(t *testing.T) (cache.ThreadCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisThreadCache(client, logger.NewNop()), mr
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	chats  []entity.Chat
}

func (p *recordingPublisher) PublishChatEvent(ctx context.Context, eventType string, chat entity.Chat) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	p.chats = append(p.chats, chat)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type sliceStream struct {
	fragments []string
	err       error
	pos       int
	closed    bool
}

func (s *sliceStream) Recv() (string, error) {
	if s.pos < len(s.fragments) {
		f := s.fragments[s.pos]
		s.pos++
		return f, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *sliceStream) Close() {
	s.closed = true
}

// fakeProvider scripts a CompletionProvider. streamErr fails Stream itself,
// midStreamErr is returned after all fragments were delivered.
type fakeProvider struct {
	mu sync.Mutex

	fragments    []string
	streamErr    error
	midStreamErr error
	onStream     func(history []llm.Message)

	completeText string
	completeErr  error

	streamCalls   int
	completeCalls int
	lastHistory   []llm.Message
	lastOptions   *llm.Options
	lastStream    *sliceStream
}

func (p *fakeProvider) Stream(ctx context.Context, history []llm.Message, options ...llm.Option) (llm.FragmentStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streamCalls++
	p.lastHistory = history
	p.lastOptions = llm.ApplyOptions(options...)
	if p.onStream != nil {
		p.onStream(history)
	}
	if p.streamErr != nil {
		return nil, p.streamErr
	}
	p.lastStream = &sliceStream{fragments: p.fragments, err: p.midStreamErr}
	return p.lastStream, nil
}

func (p *fakeProvider) Complete(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completeCalls++
	p.lastHistory = history
	p.lastOptions = llm.ApplyOptions(options...)
	return p.completeText, p.completeErr
}

type stubTitleService struct {
	title string
	err   error
	calls int
}

func (s *stubTitleService) GenerateTitle(ctx context.Context, thread []entity.Message) (string, error) {
	s.calls++
	return s.title, s.err
}

type gatewayFixture struct {
	db        *gorm.DB
	cache     cache.ThreadCache
	redis     *miniredis.Miniredis
	publisher *recordingPublisher
	service   IMessageService
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	db := newTestDB(t)
	threadCache, mr := newRedisThreadCache(t)
	publisher := &recordingPublisher{}
	return &gatewayFixture{
		db:        db,
		cache:     threadCache,
		redis:     mr,
		publisher: publisher,
		service: NewMessageService(
			unitofwork.NewRepositoryFactory(db),
			threadCache,
			0,
			publisher,
			logger.NewNop(),
		),
	}
}

func countMessages(t *testing.T, db *gorm.DB, chatId string, role entity.MessageRole) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Message{}).Where("chat_id = ? AND role = ?", chatId, string(role)).Count(&count).Error)
	return count
}

func countChats(t *testing.T, db *gorm.DB, chatId string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Chat{}).Where("chat_id = ?", chatId).Count(&count).Error)
	return count
}

// hookedFactory runs beforeFind ahead of every message FindAll.
type hookedFactory struct {
	unitofwork.RepositoryFactory
	beforeFind func()
}

func (f *hookedFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &hookedUnitOfWork{UnitOfWork: f.RepositoryFactory.NewUnitOfWork(ctx), beforeFind: f.beforeFind}
}

type hookedUnitOfWork struct {
	unitofwork.UnitOfWork
	beforeFind func()
}

func (u *hookedUnitOfWork) MessageRepository() contract.MessageRepository {
	return &hookedMessageRepository{MessageRepository: u.UnitOfWork.MessageRepository(), beforeFind: u.beforeFind}
}

type hookedMessageRepository struct {
	contract.MessageRepository
	beforeFind func()
}

func (r *hookedMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Message, error) {
	if r.beforeFind != nil {
		r.beforeFind()
	}
	return r.MessageRepository.FindAll(ctx, specs...)
}

// hookedCache runs beforeSet once, just before the first Set reaches the
// wrapped cache.
type hookedCache struct {
	cache.ThreadCache
	once      sync.Once
	beforeSet func()
}

func (c *hookedCache) Set(ctx context.Context, chatId string, thread []entity.Message, ttl time.Duration) {
	c.once.Do(func() {
		if c.beforeSet != nil {
			c.beforeSet()
		}
	})
	c.ThreadCache.Set(ctx, chatId, thread, ttl)
}
