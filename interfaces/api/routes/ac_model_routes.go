package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
)

func SetupACModelRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	models := api.Group("/ac-models", middleware.Protected(secret), middleware.EngineeringOnly())

	models.Get("/", h.ACModel.List)
	models.Post("/", h.ACModel.Create)
	models.Get("/:id", h.ACModel.Get)
	models.Put("/:id", h.ACModel.Update)
	models.Delete("/:id", h.ACModel.Delete)
}
