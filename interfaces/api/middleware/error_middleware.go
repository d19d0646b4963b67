package middleware

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

// ErrorHandler renders errors that escape handlers in the standard envelope
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := utils.StatusFor(err)

		if code >= fiber.StatusInternalServerError {
			logger.Error(logger.CategoryAPI, "error_handler", "Request error occurred", err, map[string]interface{}{
				"status_code": code,
				"path":        c.Path(),
				"method":      c.Method(),
			})
		}

		return utils.ServiceErrorResponse(c, "An error occurred", err)
	}
}
