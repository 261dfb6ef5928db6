package constant

import "time"

const (
	// Fallback title for chats whose title could not be generated
	ChatFallbackTitle = "New Chat"

	// Titles are capped at this many characters; longer model output is cut
	// to ChatTitleMaxLength-3 and suffixed with an ellipsis.
	ChatTitleMaxLength = 30
	ChatTitleEllipsis  = "..."

	TitleMaxTokens = 20

	TitleSystemPrompt = "You are a helpful assistant that creates concise, descriptive titles for conversations. Keep titles under 30 characters and focus on the main topic."

	TitleUserPromptTemplate = `Based on the following conversation, generate a short, descriptive title (maximum 30 characters):

User: %s
Assistant: %s

Generate a concise title that captures the main topic or question. Respond with only the title, no quotes or additional text.`

	// Sampling temperature for both the streamed turn and title generation
	DefaultTemperature = 0.7

	// Thread cache
	MessageThreadKeyPrefix = "messages:"
	MessageThreadTTL       = 24 * time.Hour

	DefaultRecentMessagesLimit = 50

	// Generic client-facing error bodies
	ErrMsgProcessRequest = "Failed to process request"
	ErrMsgFetchMessages  = "Failed to fetch messages"
	ErrMsgFetchChats     = "Failed to fetch chats"
	ErrMsgFetchChat      = "Failed to fetch chat"
	ErrMsgUpdateChat     = "Failed to update chat"
	ErrMsgDeleteChat     = "Failed to delete chat"
	ErrMsgClearMessages  = "Failed to clear messages"
)

// Event types published on chat lifecycle changes
const (
	EventChatCreated = "chat.created"
	EventChatUpdated = "chat.updated"
	EventChatDeleted = "chat.deleted"

	ChatEventsTopic = "chat_events"
)
