package routes

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/interfaces/api/middleware"
)

// SetupLogRoutes sets up log-related routes
func SetupLogRoutes(router fiber.Router, h *handlers.Handlers, secret string) {
	admin := router.Group("/admin/logs", middleware.Protected(secret), middleware.AdminOnly())

	admin.Get("/", h.Log.GetLogs)
	admin.Get("/files", h.Log.GetLogFiles)
	admin.Get("/stats", h.Log.GetLogStats)
}

func SetupAuditLogRoutes(router fiber.Router, h *handlers.Handlers, secret string) {
	audit := router.Group("/admin/audit-logs", middleware.Protected(secret), middleware.AdminOnly())

	audit.Get("/", h.AuditLog.List)
}
