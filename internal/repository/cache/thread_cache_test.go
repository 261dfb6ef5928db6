package cache

import (
	"context"
	"testing"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleThread(chatId string) []entity.Message {
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	return []entity.Message{
		{Id: uuid.New(), ChatId: chatId, Role: entity.MessageRoleUser, Content: "Hello", CreatedAt: now, UpdatedAt: now},
		{Id: uuid.New(), ChatId: chatId, Role: entity.MessageRoleAssistant, Content: "Hi there!", CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)},
	}
}

func newRedisCache(t *testing.T) (*RedisThreadCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisThreadCache(client, logger.NewNop()), mr
}

func TestThreadKey(t *testing.T) {
	assert.Equal(t, "messages:test-chat-123", ThreadKey("test-chat-123"))
}

func TestRedisThreadCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	thread := sampleThread("c1")

	_, ok := c.Get(ctx, "c1")
	assert.False(t, ok, "expected miss before set")

	c.Set(ctx, "c1", thread, 24*time.Hour)
	assert.True(t, mr.Exists("messages:c1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("messages:c1"))

	got, ok := c.Get(ctx, "c1")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, thread[0].Id, got[0].Id)
	assert.Equal(t, thread[1].Content, got[1].Content)
	assert.True(t, thread[0].CreatedAt.Equal(got[0].CreatedAt))

	c.Invalidate(ctx, "c1")
	_, ok = c.Get(ctx, "c1")
	assert.False(t, ok, "expected miss after invalidate")
}

func TestRedisThreadCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	c.Set(ctx, "c1", sampleThread("c1"), time.Hour)
	mr.FastForward(2 * time.Hour)

	_, ok := c.Get(ctx, "c1")
	assert.False(t, ok)
}

func TestRedisThreadCacheUndecodablePayloadIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	require.NoError(t, mr.Set("messages:c1", "not-json"))
	_, ok := c.Get(ctx, "c1")
	assert.False(t, ok)
}

func TestRedisThreadCacheFailsOpen(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	mr.Close()

	assert.NotPanics(t, func() {
		c.Set(ctx, "c1", sampleThread("c1"), time.Hour)
		c.Invalidate(ctx, "c1")
	})
	_, ok := c.Get(ctx, "c1")
	assert.False(t, ok)
}

func TestMemoryThreadCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryThreadCache(time.Hour)
	thread := sampleThread("c1")

	c.Set(ctx, "c1", thread, time.Hour)
	got, ok := c.Get(ctx, "c1")
	require.True(t, ok)
	assert.Equal(t, thread, got)

	// Mutating the returned slice must not leak into the cache.
	got[0].Content = "changed"
	again, _ := c.Get(ctx, "c1")
	assert.Equal(t, "Hello", again[0].Content)

	c.Invalidate(ctx, "c1")
	_, ok = c.Get(ctx, "c1")
	assert.False(t, ok)

	c.Set(ctx, "short", thread, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok = c.Get(ctx, "short")
	assert.False(t, ok)
}
