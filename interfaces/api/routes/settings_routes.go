package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
)

func SetupSettingsRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	settings := api.Group("/admin/settings", middleware.Protected(secret), middleware.AdminOnly())

	settings.Get("/", h.Settings.Get)
	settings.Put("/", h.Settings.Update)
}
