package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const defaultOpTimeout = 2 * time.Second

type RedisThreadCache struct {
	client    redis.Cmdable
	logger    logger.ILogger
	opTimeout time.Duration
}

func NewRedisThreadCache(client redis.Cmdable, log logger.ILogger) *RedisThreadCache {
	return &RedisThreadCache{
		client:    client,
		logger:    log,
		opTimeout: defaultOpTimeout,
	}
}

func (c *RedisThreadCache) Get(ctx context.Context, chatId string) ([]entity.Message, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	key := ThreadKey(chatId)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Error("CacheService", "Redis get error", map[string]interface{}{"key": key, "error": err})
		return nil, false
	}

	var thread []entity.Message
	if err := json.Unmarshal(data, &thread); err != nil {
		c.logger.Warn("CacheService", "Discarding undecodable thread", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}
	return thread, true
}

func (c *RedisThreadCache) Set(ctx context.Context, chatId string, thread []entity.Message, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	key := ThreadKey(chatId)
	data, err := json.Marshal(thread)
	if err != nil {
		c.logger.Error("CacheService", "Thread encode error", map[string]interface{}{"key": key, "error": err})
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("CacheService", "Redis set error", map[string]interface{}{"key": key, "error": err})
	}
}

func (c *RedisThreadCache) Invalidate(ctx context.Context, chatId string) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	key := ThreadKey(chatId)
	if err := c.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Error("CacheService", "Redis delete error", map[string]interface{}{"key": key, "error": err})
	}
}
