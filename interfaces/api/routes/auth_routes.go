package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
	"screw-inspection/pkg/config"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers, secret string, rl *config.RateLimitConfig) {
	auth := api.Group("/auth")

	auth.Post("/login", middleware.AuthRateLimiter(rl), h.Auth.Login)
	auth.Post("/register", middleware.AuthRateLimiter(rl), h.Auth.Register)

	// Protected routes
	auth.Get("/me", middleware.Protected(secret), h.Auth.GetCurrentUser)
}
