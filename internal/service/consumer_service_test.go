package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/cache"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFeed struct {
	mu     sync.Mutex
	events []dto.ChatEvent
}

func (f *recordingFeed) BroadcastChatEvent(event dto.ChatEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *recordingFeed) Types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

type recordingExporter struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (e *recordingExporter) Publish(ctx context.Context, event events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subjects = append(e.subjects, event.EventType())
	return e.err
}

func (e *recordingExporter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subjects)
}

type busFixture struct {
	threadCache cache.ThreadCache
	messages    IMessageService
	feed        *recordingFeed
	exporter    *recordingExporter
}

func newBusFixture(t *testing.T, exporterErr error) *busFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	threadCache := cache.NewMemoryThreadCache(time.Hour)
	publisher := NewPublisherService(pubSub, constant.ChatEventsTopic, logger.NewNop())
	messages := NewMessageService(unitofwork.NewRepositoryFactory(newTestDB(t)), threadCache, time.Hour, publisher, logger.NewNop())

	feed := &recordingFeed{}
	exporter := &recordingExporter{err: exporterErr}
	consumer := NewConsumerService(pubSub, constant.ChatEventsTopic, messages, feed, exporter, logger.NewNop())
	require.NoError(t, consumer.Consume(ctx))

	return &busFixture{threadCache: threadCache, messages: messages, feed: feed, exporter: exporter}
}

func TestConsumerFansOutChatLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newBusFixture(t, nil)

	_, err := f.messages.CreateChat(ctx, "c1", "Greeting")
	require.NoError(t, err)
	_, err = f.messages.UpdateChatTitle(ctx, "c1", "Renamed")
	require.NoError(t, err)
	require.NoError(t, f.messages.DeleteChat(ctx, "c1"))

	want := []string{constant.EventChatCreated, constant.EventChatUpdated, constant.EventChatDeleted}
	require.Eventually(t, func() bool { return len(f.feed.Types()) == len(want) }, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, want, f.feed.Types())
	assert.Eventually(t, func() bool { return f.exporter.Count() == 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestConsumerWarmsThreadOnChatCreated(t *testing.T) {
	ctx := context.Background()
	f := newBusFixture(t, nil)

	_, err := f.messages.SaveMessage(ctx, "c1", entity.MessageRoleUser, "Hi")
	require.NoError(t, err)
	_, err = f.messages.SaveMessage(ctx, "c1", entity.MessageRoleAssistant, "Hello")
	require.NoError(t, err)

	_, ok := f.threadCache.Get(ctx, "c1")
	require.False(t, ok)

	_, err = f.messages.CreateChat(ctx, "c1", "Greeting")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		thread, ok := f.threadCache.Get(ctx, "c1")
		return ok && len(thread) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumerSurvivesExportFailure(t *testing.T) {
	ctx := context.Background()
	f := newBusFixture(t, errors.New("nats down"))

	_, err := f.messages.CreateChat(ctx, "c1", "Greeting")
	require.NoError(t, err)
	_, err = f.messages.CreateChat(ctx, "c2", "Second")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(f.feed.Types()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublisherServiceSetsMetadata(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, constant.ChatEventsTopic)
	require.NoError(t, err)

	publisher := NewPublisherService(pubSub, constant.ChatEventsTopic, logger.NewNop())
	publisher.PublishChatEvent(ctx, constant.EventChatUpdated, entity.Chat{ChatId: "c1", Title: "T"})

	var msg *message.Message
	select {
	case msg = <-messages:
	case <-ctx.Done():
		t.Fatal("no message published")
	}
	msg.Ack()

	assert.Equal(t, constant.EventChatUpdated, msg.Metadata.Get("event_type"))
	assert.Contains(t, string(msg.Payload), `"chatId":"c1"`)
}
