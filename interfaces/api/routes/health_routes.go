package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/pkg/config"
)

func SetupHealthRoutes(app *fiber.App, healthHandler *handlers.HealthHandler, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Server is running",
			"service": cfg.App.Name,
		})
	})

	// Detailed health check (checks all components)
	if healthHandler != nil {
		app.Get("/health/detailed", healthHandler.DetailedHealth)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to " + cfg.App.Name + " API",
			"version": "1.0.0",
			"docs":    "/api/v1",
			"health":  "/health",
		})
	})
}
