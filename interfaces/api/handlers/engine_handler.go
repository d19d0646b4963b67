package handlers

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

// EngineHandler serves the inference engine registry
type EngineHandler struct {
	engineService services.EngineService
}

func NewEngineHandler(engineService services.EngineService) *EngineHandler {
	return &EngineHandler{engineService: engineService}
}

func (h *EngineHandler) List(c *fiber.Ctx) error {
	engines, err := h.engineService.List(c.UserContext())
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to list engines", err)
	}
	return utils.SuccessResponse(c, "Engines retrieved successfully", dto.EngineListResponse{
		Engines:        dto.EnginesToResponses(engines),
		SupportedKinds: dto.SupportedKinds(),
	})
}

func (h *EngineHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid engine id", err)
	}

	engine, err := h.engineService.Get(c.UserContext(), id)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get engine", err)
	}
	return utils.SuccessResponse(c, "Engine retrieved successfully", dto.EngineToResponse(engine))
}

// Upload godoc
// @Summary Register a new inference engine
// @Tags Engines
// @Accept multipart/form-data
// @Produce json
// @Param kind formData string true "Engine kind"
// @Param version formData string true "Version label"
// @Param description formData string false "Description"
// @Param file formData file true "Weights file"
// @Success 201 {object} dto.EngineResponse
// @Router /admin/engines [post]
func (h *EngineHandler) Upload(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid upload", apperrors.Validation("weights file is required"))
	}
	file, err := fh.Open()
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid upload", apperrors.Validation("weights file is unreadable"))
	}
	defer file.Close()

	engine, err := h.engineService.Register(c.UserContext(), actor, services.RegisterEngineInput{
		Kind:        c.FormValue("kind"),
		Version:     c.FormValue("version"),
		Description: c.FormValue("description"),
		FileName:    fh.Filename,
		Size:        fh.Size,
		Content:     file,
	})
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to register engine", err)
	}

	logger.Engine("uploaded", "Engine artifact uploaded", map[string]interface{}{
		"engine_id": engine.ID.String(),
		"artifact":  engine.ArtifactName,
		"user_id":   actor.ID.String(),
	})
	return utils.CreatedResponse(c, "Engine registered successfully", dto.EngineToResponse(engine))
}

func (h *EngineHandler) Activate(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid engine id", err)
	}

	engine, err := h.engineService.Activate(c.UserContext(), actor, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to activate engine", err)
	}
	return utils.SuccessResponse(c, "Engine activated successfully", dto.EngineToResponse(engine))
}

func (h *EngineHandler) Deactivate(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid engine id", err)
	}

	engine, err := h.engineService.Deactivate(c.UserContext(), actor, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to deactivate engine", err)
	}
	return utils.SuccessResponse(c, "Engine deactivated successfully", dto.EngineToResponse(engine))
}

func (h *EngineHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid engine id", err)
	}

	if err := h.engineService.Delete(c.UserContext(), actor, id); err != nil {
		return utils.ServiceErrorResponse(c, "Failed to delete engine", err)
	}
	return utils.SuccessResponse(c, "Engine deleted successfully", nil)
}

// Status reports the cached detector without triggering a load
func (h *EngineHandler) Status(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Detector status retrieved", statusResponse(h.engineService.DetectorStatus()))
}

// Check forces the active engine to load and reports the outcome
func (h *EngineHandler) Check(c *fiber.Ctx) error {
	if _, err := h.engineService.CheckActive(c.UserContext()); err != nil {
		return utils.ServiceErrorResponse(c, "Active engine is not usable", err)
	}
	return utils.SuccessResponse(c, "Active engine loaded", statusResponse(h.engineService.DetectorStatus()))
}

func statusResponse(status services.HandleStatus) dto.DetectorStatusResponse {
	resp := dto.DetectorStatusResponse{
		State:     string(status.State),
		LoadedAt:  status.LoadedAt,
		LastError: status.LastError,
	}
	if status.Engine != nil {
		id := status.Engine.ID
		resp.EngineID = &id
		resp.Kind = string(status.Engine.Kind)
		resp.Version = status.Engine.Version
	}
	return resp
}
