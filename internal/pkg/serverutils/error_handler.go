package serverutils

import (
	"errors"
	"strconv"

	"ai-menustudio-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into
// the shared JSON error envelope. Rate limit errors keep their structured
// payload so the client can render the countdown.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var limitErr *dto.RateLimitExceededError
		if errors.As(err, &limitErr) {
			seconds := int(limitErr.RetryAfter.Seconds())
			ctx.Set("Retry-After", strconv.Itoa(seconds))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.RateLimitExceededResponse{
				Success:   false,
				Code:      fiber.StatusTooManyRequests,
				Message:   limitErr.Error(),
				ErrorType: "rate_limit_exceeded",
				Data: dto.RateLimitExceededData{
					Kind:              limitErr.Kind,
					RetryAfterSeconds: seconds,
				},
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "internal server error",
		})
	}
}
