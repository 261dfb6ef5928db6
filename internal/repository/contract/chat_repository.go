package contract

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
)

type ChatRepository interface {
	// CreateIfAbsent inserts the chat unless a row with the same id exists.
	// It reports whether a new row was written and leaves the stored record in chat.
	CreateIfAbsent(ctx context.Context, chat *entity.Chat) (bool, error)
	UpdateTitle(ctx context.Context, chatId string, title string) (*entity.Chat, error)
	Delete(ctx context.Context, chatId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Chat, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
