package handlers

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/utils"
)

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, active, err := h.settingsService.Get(c.UserContext())
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get settings", err)
	}
	return utils.SuccessResponse(c, "Settings retrieved successfully", dto.SettingsToResponse(settings, active))
}

// Update godoc
// @Summary Select the active AC model and registration policy
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Settings"
// @Success 200 {object} dto.SettingsResponse
// @Router /admin/settings [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.UpdateSettingsRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid settings", err)
	}

	settings, active, err := h.settingsService.Update(c.UserContext(), actor, &req)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to update settings", err)
	}
	return utils.SuccessResponse(c, "Settings updated successfully", dto.SettingsToResponse(settings, active))
}
