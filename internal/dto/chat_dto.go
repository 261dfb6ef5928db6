package dto

import (
	"time"

	"ai-chat-be/internal/entity"
)

// TurnMessage is one prior turn submitted by the client.
type TurnMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

type SendChatRequest struct {
	ChatId   string        `json:"chatId" validate:"required,max=64"`
	Messages []TurnMessage `json:"messages" validate:"required,min=1,dive"`
}

// StreamChunk is the payload of every SSE data event.
type StreamChunk struct {
	Content string `json:"content"`
}

// StreamDone closes a successful stream. Title is set when the turn created
// the chat.
type StreamDone struct {
	ChatId string `json:"chatId"`
	Title  string `json:"title,omitempty"`
}

type StreamError struct {
	Error string `json:"error"`
}

// GetMessagesQuery narrows a thread read. Limit returns only the latest
// messages, Role only one author's; the two cannot be combined.
type GetMessagesQuery struct {
	Limit int    `query:"limit" validate:"omitempty,min=1,max=500,excluded_with=Role"`
	Role  string `query:"role" validate:"omitempty,oneof=user assistant"`
}

type GetMessagesResponse struct {
	Messages []entity.Message `json:"messages"`
}

type GetChatsResponse struct {
	Chats []entity.Chat `json:"chats"`
}

type GetChatResponse struct {
	Chat *entity.Chat `json:"chat"`
}

type UpdateChatTitleRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Message string `json:"message"`
}

// ChatEvent is published on the internal bus and pushed to websocket clients
// whenever a chat is created, renamed or deleted.
type ChatEvent struct {
	Type       string      `json:"type"`
	Chat       entity.Chat `json:"data"`
	OccurredAt time.Time   `json:"occurredAt"`
}
