package routes

import (
	"github.com/gofiber/fiber/v2"

	wsmanager "screw-inspection/infrastructure/websocket"
	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/pkg/config"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, cfg *config.Config, manager *wsmanager.Manager) {
	// Setup health and root routes
	SetupHealthRoutes(app, h.Health, cfg)

	// API version group
	api := app.Group("/api/v1")

	secret := cfg.JWT.Secret

	// Setup all route groups
	SetupAuthRoutes(api, h, secret, &cfg.RateLimit)
	SetupUserRoutes(api, h, secret)
	SetupEngineRoutes(api, h, secret)
	SetupACModelRoutes(api, h, secret)
	SetupSettingsRoutes(api, h, secret)
	SetupDetectionRoutes(api, h, secret)
	SetupHistoryRoutes(api, h, secret)
	SetupDashboardRoutes(api, h, secret)
	SetupAuditLogRoutes(api, h, secret)
	SetupLogRoutes(api, h, secret)
	SetupMaintenanceRoutes(api, h, secret)

	// Setup WebSocket routes (needs app, not api group)
	if manager != nil {
		SetupWebSocketRoutes(app, manager, secret)
	}
}
