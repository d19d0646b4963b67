package handlers

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/services"
	"screw-inspection/pkg/utils"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) scope(c *fiber.Ctx) (string, int, error) {
	actor, err := actorFromContext(c)
	if err != nil {
		return "", 0, err
	}
	return actor.VisibleTeam(c.Query("team")), c.QueryInt("days", 0), nil
}

func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	team, days, err := h.scope(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	resp, err := h.dashboardService.Overview(c.UserContext(), team, days)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get overview", err)
	}
	return utils.SuccessResponse(c, "Overview retrieved successfully", resp)
}

func (h *DashboardHandler) TeamStats(c *fiber.Ctx) error {
	team, days, err := h.scope(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	resp, err := h.dashboardService.TeamStats(c.UserContext(), team, days)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get team stats", err)
	}
	return utils.SuccessResponse(c, "Team stats retrieved successfully", resp)
}

func (h *DashboardHandler) UserPerformance(c *fiber.Ctx) error {
	team, days, err := h.scope(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	resp, err := h.dashboardService.UserPerformance(c.UserContext(), team, days)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get user performance", err)
	}
	return utils.SuccessResponse(c, "User performance retrieved successfully", resp)
}
