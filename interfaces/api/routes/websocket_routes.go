package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	wsmanager "screw-inspection/infrastructure/websocket"
	"screw-inspection/interfaces/api/middleware"
	websocketHandler "screw-inspection/interfaces/api/websocket"
)

func SetupWebSocketRoutes(app *fiber.App, manager *wsmanager.Manager, secret string) {
	feed := websocketHandler.NewInspectionFeedHandler(manager)

	// Browsers cannot set headers on upgrade, so the token may come as ?token=
	app.Use("/ws/inspections", middleware.ProtectedWithQueryToken(secret), feed.Upgrade)
	app.Get("/ws/inspections", websocket.New(feed.Handle))
}
