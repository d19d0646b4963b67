package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
)

func SetupMaintenanceRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	if h.Maintenance == nil {
		return
	}
	jobs := api.Group("/admin/maintenance/jobs", middleware.Protected(secret), middleware.AdminOnly())

	jobs.Get("/", h.Maintenance.ListJobs)
	jobs.Post("/:id/run", h.Maintenance.RunJob)
}
