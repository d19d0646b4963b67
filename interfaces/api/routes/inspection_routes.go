package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
)

// SetupDetectionRoutes is the live client surface; every authenticated role may inspect
func SetupDetectionRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	detection := api.Group("/detection", middleware.Protected(secret))

	detection.Post("/process-frame", h.Detection.ProcessFrame)
	detection.Get("/config", h.Detection.GetConfig)
	detection.Post("/save-inspection", h.Detection.SaveInspection)
}

func SetupHistoryRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	history := api.Group("/history", middleware.Protected(secret))

	history.Get("/user", h.History.UserHistory)
	history.Get("/team", h.History.TeamHistory)
	history.Get("/export", h.History.Export)
}

func SetupDashboardRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	dashboard := api.Group("/dashboard", middleware.Protected(secret))

	dashboard.Get("/overview", h.Dashboard.Overview)
	dashboard.Get("/team-stats", h.Dashboard.TeamStats)
	dashboard.Get("/user-performance", h.Dashboard.UserPerformance)
}
