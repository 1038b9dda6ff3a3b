package handlers

import (
	"errors"

	"gadgetstore/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders every error returned by a handler or middleware as
// {"error": message, "code": code}. Unexpected errors are logged and
// reported without detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperr.As(err); ok {
		body := fiber.Map{"error": appErr.Message(), "code": appErr.Code()}
		var vf *ValidationFailure
		if errors.As(err, &vf) {
			body["errors"] = vf.Fields()
		}
		return c.Status(appErr.HTTPCode()).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	zap.L().Error("unhandled request error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
		"code":  "INTERNAL",
	})
}
