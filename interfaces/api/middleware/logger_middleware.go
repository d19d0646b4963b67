package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

// LoggerMiddleware writes one api log entry per request
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = utils.StatusFor(err)
		}

		entry := logger.LogEntry{
			Level:     logger.LevelInfo,
			Category:  logger.CategoryAPI,
			Action:    "request",
			Message:   c.Method() + " " + c.Path(),
			Duration:  time.Since(start).String(),
			RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
			Data: map[string]interface{}{
				"status": status,
				"ip":     c.IP(),
			},
		}
		if user, ok := c.Locals("user").(*utils.UserContext); ok {
			entry.UserID = user.ID.String()
		}
		if status >= fiber.StatusInternalServerError {
			entry.Level = logger.LevelError
		} else if status >= fiber.StatusBadRequest {
			entry.Level = logger.LevelWarn
		}
		logger.Default().Log(entry)

		return err
	}
}

func CorsMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

func RequestIDMiddleware() fiber.Handler {
	return requestid.New()
}

func RecoverMiddleware() fiber.Handler {
	return recover.New()
}
