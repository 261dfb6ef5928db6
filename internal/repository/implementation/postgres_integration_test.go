package implementation

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when DB_CONNECTION_STRING is set.
func TestPostgresChatRepositories(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	ctx := context.Background()
	chatId := "it-" + uuid.NewString()
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)
	t.Cleanup(func() {
		messages.DeleteByChatId(ctx, chatId)
		chats.Delete(ctx, chatId)
	})

	t.Run("Concurrent creates keep one chat", func(t *testing.T) {
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			go func() {
				_, err := chats.CreateIfAbsent(ctx, &entity.Chat{ChatId: chatId, Title: "Greeting"})
				errs <- err
			}()
		}
		for i := 0; i < 8; i++ {
			assert.NoError(t, <-errs)
		}

		count, err := chats.Count(ctx, specification.ByChatID{ChatID: chatId})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("Thread order survives timestamp ties", func(t *testing.T) {
		for _, content := range []string{"a", "b", "c"} {
			require.NoError(t, messages.Create(ctx, &entity.Message{ChatId: chatId, Role: entity.MessageRoleUser, Content: content}))
		}

		thread, err := messages.FindAll(ctx, specification.ByChatID{ChatID: chatId}, specification.ThreadOrder{})
		require.NoError(t, err)
		require.Len(t, thread, 3)
		assert.Equal(t, "a", thread[0].Content)
		assert.Equal(t, "c", thread[2].Content)
	})
}
