package controller

import (
	"bufio"
	"context"
	"errors"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetChats(ctx *fiber.Ctx) error
	GetChat(ctx *fiber.Ctx) error
	UpdateChat(ctx *fiber.Ctx) error
	DeleteChat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService    service.IChatService
	messageService service.IMessageService
	logger         logger.ILogger
}

func NewChatController(chatService service.IChatService, messageService service.IMessageService, log logger.ILogger) IChatController {
	return &chatController{
		chatService:    chatService,
		messageService: messageService,
		logger:         log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.SendChat)

	h := r.Group("/chats")
	h.Get("", c.GetChats)
	h.Get(":chatId", c.GetChat)
	h.Patch(":chatId", c.UpdateChat)
	h.Delete(":chatId", c.DeleteChat)
}

// SendChat streams one assistant reply as server-sent events. Everything up to
// opening the completion runs before the response is committed, so failures
// there still produce a JSON error body.
func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The stream writer outlives this handler, so the turn gets its own
	// cancellable context instead of the request's.
	turnCtx, cancel := context.WithCancel(ctx.UserContext())
	turn, err := c.chatService.BeginTurn(turnCtx, &req)
	if err != nil {
		cancel()
		if errors.Is(err, service.ErrEmptyTurns) || errors.Is(err, service.ErrInvalidRole) {
			return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		c.logger.Error("ChatController", "Failed to start chat turn", map[string]interface{}{
			"chat_id": req.ChatId,
			"error":   err,
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: constant.ErrMsgProcessRequest})
	}

	serverutils.StartSSE(ctx, func(w *bufio.Writer) {
		defer cancel()

		emit := func(fragment string) error {
			if err := serverutils.WriteSSEData(w, dto.StreamChunk{Content: fragment}); err != nil {
				cancel()
				return err
			}
			return nil
		}

		result, err := turn.Relay(turnCtx, emit)
		switch {
		case err == nil:
			done := dto.StreamDone{ChatId: turn.ChatId()}
			if result.Chat != nil {
				done.Title = result.Chat.Title
			}
			serverutils.WriteSSEEvent(w, serverutils.SSEEventDone, done)

		case errors.Is(err, service.ErrClientGone):
			c.logger.Info("ChatController", "Client disconnected mid-stream", map[string]interface{}{
				"chat_id":        turn.ChatId(),
				"streamed_bytes": len(result.Content),
			})

		default:
			c.logger.Error("ChatController", "Chat turn failed mid-stream", map[string]interface{}{
				"chat_id": turn.ChatId(),
				"error":   err,
			})
			serverutils.WriteSSEEvent(w, serverutils.SSEEventError, dto.StreamError{Error: constant.ErrMsgProcessRequest})
		}
	})

	return nil
}

func (c *chatController) GetChats(ctx *fiber.Ctx) error {
	chats, err := c.messageService.GetAllChats(ctx.UserContext())
	if err != nil {
		c.logger.Error("ChatController", "Failed to fetch chats", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: constant.ErrMsgFetchChats})
	}

	return ctx.JSON(dto.GetChatsResponse{Chats: chats})
}

func (c *chatController) GetChat(ctx *fiber.Ctx) error {
	chat, err := c.messageService.GetChatById(ctx.UserContext(), ctx.Params("chatId"))
	if err != nil {
		return c.chatError(ctx, err, constant.ErrMsgFetchChat)
	}

	return ctx.JSON(dto.GetChatResponse{Chat: chat})
}

func (c *chatController) UpdateChat(ctx *fiber.Ctx) error {
	var req dto.UpdateChatTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	chat, err := c.messageService.UpdateChatTitle(ctx.UserContext(), ctx.Params("chatId"), req.Title)
	if err != nil {
		return c.chatError(ctx, err, constant.ErrMsgUpdateChat)
	}

	return ctx.JSON(dto.GetChatResponse{Chat: chat})
}

func (c *chatController) DeleteChat(ctx *fiber.Ctx) error {
	if err := c.messageService.DeleteChat(ctx.UserContext(), ctx.Params("chatId")); err != nil {
		return c.chatError(ctx, err, constant.ErrMsgDeleteChat)
	}

	return ctx.JSON(dto.StatusResponse{Message: "Chat deleted"})
}

func (c *chatController) chatError(ctx *fiber.Ctx, err error, message string) error {
	if errors.Is(err, service.ErrChatNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	c.logger.Error("ChatController", message, map[string]interface{}{
		"chat_id": ctx.Params("chatId"),
		"error":   err,
	})
	return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: message})
}
