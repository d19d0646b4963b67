package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"screw-inspection/pkg/config"
	"screw-inspection/pkg/logger"
)

// RateLimiter returns a general rate limiting middleware
func RateLimiter(cfg *config.RateLimitConfig) fiber.Handler {
	return newLimiter(cfg.Enabled, cfg.MaxRequests, cfg.WindowSeconds,
		"RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.")
}

// AuthRateLimiter is the stricter limiter for login and registration
func AuthRateLimiter(cfg *config.RateLimitConfig) fiber.Handler {
	return newLimiter(cfg.Enabled, cfg.AuthMaxRequests, cfg.AuthWindowSeconds,
		"AUTH_RATE_LIMIT_EXCEEDED", "Too many authentication attempts. Please try again later.")
}

func newLimiter(enabled bool, max, windowSeconds int, code, message string) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Duration(windowSeconds) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.API("rate_limited", "Request rejected by rate limiter", map[string]interface{}{
				"ip":    c.IP(),
				"path":  c.Path(),
				"limit": code,
			})
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": message,
				"error":   code,
			})
		},
	})
}
