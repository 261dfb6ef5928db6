package serverutils

import (
	"errors"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into JSON bodies.
// Unknown errors never leak their message to the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: validationErr.Error()})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(dto.ErrorResponse{Error: fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: constant.ErrMsgProcessRequest})
	}
}
