package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	PublishChatEvent(ctx context.Context, eventType string, chat entity.Chat)
}

type publisherService struct {
	publisher message.Publisher
	topicName string
	logger    logger.ILogger
}

func NewPublisherService(publisher message.Publisher, topicName string, log logger.ILogger) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
		logger:    log,
	}
}

// PublishChatEvent is fire-and-forget. A failed publish never fails the
// operation that produced the event.
func (p *publisherService) PublishChatEvent(ctx context.Context, eventType string, chat entity.Chat) {
	payload, err := json.Marshal(dto.ChatEvent{
		Type:       eventType,
		Chat:       chat,
		OccurredAt: time.Now(),
	})
	if err != nil {
		p.logger.Error("PublisherService", "Failed to marshal chat event", map[string]interface{}{
			"type":  eventType,
			"error": err,
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", eventType)

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("PublisherService", "Failed to publish chat event", map[string]interface{}{
			"type":    eventType,
			"chat_id": chat.ChatId,
			"error":   err,
		})
	}
}
