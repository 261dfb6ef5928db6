package cache

import (
	"context"
	"time"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/entity"
)

// ThreadCache is a look-aside cache for a chat's ordered message list.
// It is never authoritative: implementations swallow backend failures,
// log them, and report a miss or do nothing.
type ThreadCache interface {
	Get(ctx context.Context, chatId string) ([]entity.Message, bool)
	Set(ctx context.Context, chatId string, thread []entity.Message, ttl time.Duration)
	Invalidate(ctx context.Context, chatId string)
}

func ThreadKey(chatId string) string {
	return constant.MessageThreadKeyPrefix + chatId
}

func copyThread(thread []entity.Message) []entity.Message {
	out := make([]entity.Message, len(thread))
	copy(out, thread)
	return out
}
