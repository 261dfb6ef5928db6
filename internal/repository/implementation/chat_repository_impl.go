package implementation

import (
	"context"
	"errors"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	return &ChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatRepositoryImpl) CreateIfAbsent(ctx context.Context, chat *entity.Chat) (bool, error) {
	m := r.mapper.ChatToModel(chat)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "chat_id"}}, DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		*chat = *r.mapper.ChatToEntity(m)
		return true, nil
	}

	// Lost the race (or the chat already existed): hand back the stored row.
	existing, err := r.FindOne(ctx, specification.ByChatID{ChatID: chat.ChatId})
	if err != nil {
		return false, err
	}
	if existing != nil {
		*chat = *existing
	}
	return false, nil
}

func (r *ChatRepositoryImpl) UpdateTitle(ctx context.Context, chatId string, title string) (*entity.Chat, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("chat_id = ?", chatId).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindOne(ctx, specification.ByChatID{ChatID: chatId})
}

func (r *ChatRepositoryImpl) Delete(ctx context.Context, chatId string) error {
	return r.db.WithContext(ctx).Where("chat_id = ?", chatId).Delete(&model.Chat{}).Error
}

func (r *ChatRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	var m model.Chat
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatToEntity(&m), nil
}

func (r *ChatRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Chat, error) {
	var models []*model.Chat
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]entity.Chat, 0, len(models))
	for _, m := range models {
		entities = append(entities, *r.mapper.ChatToEntity(m))
	}
	return entities, nil
}

func (r *ChatRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Chat{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
