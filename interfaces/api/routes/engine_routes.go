package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
)

func SetupEngineRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	engines := api.Group("/admin/engines", middleware.Protected(secret), middleware.AdminOnly())

	engines.Get("/", h.Engine.List)
	engines.Post("/", h.Engine.Upload)

	// Registered before /:id so "active" is not parsed as an id
	engines.Get("/active/status", h.Engine.Status)
	engines.Post("/active/check", h.Engine.Check)

	engines.Get("/:id", h.Engine.Get)
	engines.Post("/:id/activate", h.Engine.Activate)
	engines.Post("/:id/deactivate", h.Engine.Deactivate)
	engines.Delete("/:id", h.Engine.Delete)
}
