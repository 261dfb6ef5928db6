package controller

import (
	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	GetMessages(ctx *fiber.Ctx) error
	ClearMessages(ctx *fiber.Ctx) error
}

type messageController struct {
	messageService service.IMessageService
	logger         logger.ILogger
}

func NewMessageController(messageService service.IMessageService, log logger.ILogger) IMessageController {
	return &messageController{
		messageService: messageService,
		logger:         log,
	}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/messages")
	h.Get(":chatId", c.GetMessages)
	h.Delete(":chatId", c.ClearMessages)
}

// GetMessages returns the thread in chronological order. ?limit=N returns
// only the latest N messages, ?role=user|assistant one author's messages.
func (c *messageController) GetMessages(ctx *fiber.Ctx) error {
	chatId := ctx.Params("chatId")

	var query dto.GetMessagesQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid query parameters"})
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	var (
		messages []entity.Message
		err      error
	)
	switch {
	case query.Limit > 0:
		messages, err = c.messageService.GetRecentMessagesByChatId(ctx.UserContext(), chatId, query.Limit)
	case query.Role != "":
		messages, err = c.messageService.GetMessagesByRole(ctx.UserContext(), chatId, entity.MessageRole(query.Role))
	default:
		messages, err = c.messageService.GetMessagesByChatId(ctx.UserContext(), chatId)
	}
	if err != nil {
		c.logger.Error("MessageController", "Failed to fetch messages", map[string]interface{}{
			"chat_id": chatId,
			"error":   err,
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: constant.ErrMsgFetchMessages})
	}

	return ctx.JSON(dto.GetMessagesResponse{Messages: messages})
}

func (c *messageController) ClearMessages(ctx *fiber.Ctx) error {
	chatId := ctx.Params("chatId")

	if err := c.messageService.ClearChatMessages(ctx.UserContext(), chatId); err != nil {
		c.logger.Error("MessageController", "Failed to clear messages", map[string]interface{}{
			"chat_id": chatId,
			"error":   err,
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: constant.ErrMsgClearMessages})
	}

	return ctx.JSON(dto.StatusResponse{Message: "Messages cleared"})
}
