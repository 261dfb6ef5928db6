package service

import (
	"context"
	"encoding/json"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ChatFeed pushes chat events to connected websocket clients.
type ChatFeed interface {
	BroadcastChatEvent(event dto.ChatEvent)
}

// EventExporter forwards events to an external bus (NATS).
type EventExporter interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	messageService IMessageService
	feed           ChatFeed
	exporter       EventExporter
	logger         logger.ILogger
}

// NewConsumerService wires the chat event subscriber. feed and exporter are
// optional.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	messageService IMessageService,
	feed ChatFeed,
	exporter EventExporter,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		messageService: messageService,
		feed:           feed,
		exporter:       exporter,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event dto.ChatEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal chat event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		msg.Ack() // Ack invalid messages to prevent infinite redelivery
		return
	}

	if cs.feed != nil {
		cs.feed.BroadcastChatEvent(event)
	}

	if cs.exporter != nil {
		err := cs.exporter.Publish(ctx, events.BaseEvent{
			Type: event.Type,
			Data: map[string]interface{}{
				"chatId":    event.Chat.ChatId,
				"title":     event.Chat.Title,
				"createdAt": event.Chat.CreatedAt,
				"updatedAt": event.Chat.UpdatedAt,
			},
			OccurredAt: event.OccurredAt,
		})
		if err != nil {
			cs.logger.Warn("ConsumerService", "Failed to export chat event", map[string]interface{}{
				"type":    event.Type,
				"chat_id": event.Chat.ChatId,
				"error":   err.Error(),
			})
		}
	}

	// A new chat is usually opened right away by the client; warm its thread.
	if event.Type == constant.EventChatCreated {
		if _, err := cs.messageService.GetMessagesByChatId(ctx, event.Chat.ChatId); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to warm thread cache", map[string]interface{}{
				"chat_id": event.Chat.ChatId,
				"error":   err.Error(),
			})
		}
	}

	cs.logger.Debug("ConsumerService", "Chat event processed", map[string]interface{}{
		"type":    event.Type,
		"chat_id": event.Chat.ChatId,
	})
	msg.Ack()
}
