package handler

import (
	"ai-chat-be/internal/pkg/logger"
	internalWS "ai-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatFeedHandler exposes the chat list change feed over websockets.
type ChatFeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatFeedHandler(hub *internalWS.Hub, log logger.ILogger) *ChatFeedHandler {
	return &ChatFeedHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *ChatFeedHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/chats", h.ServeWs)
}

// ServeWs upgrades the connection and attaches it to the hub.
func (h *ChatFeedHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatFeedHandler", "Starting WebSocket session", map[string]interface{}{"remote": conn.RemoteAddr().String()})
		internalWS.ServeWs(h.hub, conn)
		h.logger.Info("ChatFeedHandler", "WebSocket session ended", map[string]interface{}{"remote": conn.RemoteAddr().String()})
	})(c)
}
