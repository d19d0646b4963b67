package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"screw-inspection/domain/models"
	wsmanager "screw-inspection/infrastructure/websocket"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

// InspectionFeedHandler streams committed inspections to the caller's team room
type InspectionFeedHandler struct {
	manager *wsmanager.Manager
}

func NewInspectionFeedHandler(manager *wsmanager.Manager) *InspectionFeedHandler {
	return &InspectionFeedHandler{manager: manager}
}

// Upgrade rejects plain HTTP requests and resolves the room before the
// connection is hijacked, while the fiber context is still usable.
func (h *InspectionFeedHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "User not authenticated")
	}

	team := user.Team
	if user.Role == models.RoleAdmin {
		if requested := c.Query("team"); requested != "" {
			team = requested
		}
	}
	if team == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No team to subscribe to", nil)
	}

	c.Locals("feed_team", team)
	return c.Next()
}

func (h *InspectionFeedHandler) Handle(c *websocket.Conn) {
	user, _ := c.Locals("user").(*utils.UserContext)
	team, _ := c.Locals("feed_team").(string)
	if user == nil || team == "" {
		_ = c.Close()
		return
	}

	client := h.manager.Register(c, user.ID, team)
	defer h.manager.Unregister(client)

	logger.WebSocket("feed_connected", "Inspection feed connected", map[string]interface{}{
		"user_id": user.ID.String(),
		"team":    team,
	})

	// Clients never send anything meaningful; the read loop only notices
	// close frames and dead peers.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	logger.WebSocket("feed_disconnected", "Inspection feed disconnected", map[string]interface{}{
		"user_id": user.ID.String(),
		"team":    team,
	})
}
