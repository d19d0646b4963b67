package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
)

func SetupUserRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	users := api.Group("/admin/users", middleware.Protected(secret), middleware.AdminOnly())

	users.Get("/", h.User.List)
	users.Post("/", h.User.Create)
	users.Get("/:id", h.User.Get)
	users.Put("/:id", h.User.Update)
	users.Delete("/:id", h.User.Deactivate)
}
