package handlers

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/utils"
)

// ACModelHandler manages inspection profiles
type ACModelHandler struct {
	acModelService services.ACModelService
}

func NewACModelHandler(acModelService services.ACModelService) *ACModelHandler {
	return &ACModelHandler{acModelService: acModelService}
}

func (h *ACModelHandler) List(c *fiber.Ctx) error {
	list, err := h.acModelService.List(c.UserContext(), c.QueryBool("include_inactive", false))
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to list AC models", err)
	}
	return utils.SuccessResponse(c, "AC models retrieved successfully", dto.ACModelsToResponses(list))
}

func (h *ACModelHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid AC model id", err)
	}

	model, err := h.acModelService.Get(c.UserContext(), id)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get AC model", err)
	}
	return utils.SuccessResponse(c, "AC model retrieved successfully", dto.ACModelToResponse(model))
}

func (h *ACModelHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.CreateACModelRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid AC model", err)
	}

	model, err := h.acModelService.Create(c.UserContext(), actor, &req)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to create AC model", err)
	}
	return utils.CreatedResponse(c, "AC model created successfully", dto.ACModelToResponse(model))
}

func (h *ACModelHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid AC model id", err)
	}

	var req dto.UpdateACModelRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid AC model", err)
	}

	model, err := h.acModelService.Update(c.UserContext(), actor, id, &req)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to update AC model", err)
	}
	return utils.SuccessResponse(c, "AC model updated successfully", dto.ACModelToResponse(model))
}

func (h *ACModelHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid AC model id", err)
	}

	if err := h.acModelService.Delete(c.UserContext(), actor, id); err != nil {
		return utils.ServiceErrorResponse(c, "Failed to delete AC model", err)
	}
	return utils.SuccessResponse(c, "AC model deactivated successfully", nil)
}
