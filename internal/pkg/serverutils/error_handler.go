package serverutils

import (
	"errors"

	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler maps application errors onto HTTP statuses. Anything it
// does not recognize becomes a 500 without leaking internals to the client.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			status := statusForKind(appErr.Kind)
			if status >= fiber.StatusInternalServerError {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"kind":  appErr.Kind.String(),
					"error": appErr.Error(),
				})
				return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
			}
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
