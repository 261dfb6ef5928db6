package cache

import (
	"context"
	"time"

	"ai-chat-be/internal/entity"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryThreadCache keeps threads in process memory. It backs single-instance
// deployments that run without Redis.
type MemoryThreadCache struct {
	cache *gocache.Cache
}

func NewMemoryThreadCache(defaultTTL time.Duration) *MemoryThreadCache {
	// Purge expired threads every 10 minutes
	return &MemoryThreadCache{
		cache: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func (c *MemoryThreadCache) Get(_ context.Context, chatId string) ([]entity.Message, bool) {
	if x, found := c.cache.Get(ThreadKey(chatId)); found {
		return copyThread(x.([]entity.Message)), true
	}
	return nil, false
}

func (c *MemoryThreadCache) Set(_ context.Context, chatId string, thread []entity.Message, ttl time.Duration) {
	c.cache.Set(ThreadKey(chatId), copyThread(thread), ttl)
}

func (c *MemoryThreadCache) Invalidate(_ context.Context, chatId string) {
	c.cache.Delete(ThreadKey(chatId))
}
