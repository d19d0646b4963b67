package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

// DetectionHandler serves the live inspection client
type DetectionHandler struct {
	detectionService  services.DetectionService
	configResolver    services.ConfigResolver
	inspectionService services.InspectionService
}

func NewDetectionHandler(
	detectionService services.DetectionService,
	configResolver services.ConfigResolver,
	inspectionService services.InspectionService,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService:  detectionService,
		configResolver:    configResolver,
		inspectionService: inspectionService,
	}
}

// ProcessFrame godoc
// @Summary Run one frame through the active engine
// @Description Accepts JSON {"image": base64 or data URL}, a raw image body or a multipart "image" field. Returns every detection above the configured floor; the AC model threshold is applied by the client.
// @Tags Detection
// @Accept json
// @Produce json
// @Success 200 {object} dto.FrameResponse
// @Failure 503 {object} utils.Response
// @Router /detection/process-frame [post]
func (h *DetectionHandler) ProcessFrame(c *fiber.Ctx) error {
	payload, err := framePayload(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid frame", err)
	}

	result, err := h.detectionService.Detect(c.UserContext(), payload)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Detection failed", err)
	}

	detections := make([]dto.DetectionResponse, 0, len(result.Detections))
	for _, d := range result.Detections {
		detections = append(detections, dto.DetectionResponse{
			Box:        d.Box,
			Confidence: d.Confidence,
			ClassName:  d.ClassName,
		})
	}
	return utils.SuccessResponse(c, "Frame processed", dto.FrameResponse{
		Detections:  detections,
		Count:       len(detections),
		InferenceMs: result.InferenceMs,
		EngineID:    result.EngineID,
		Width:       result.Width,
		Height:      result.Height,
	})
}

func framePayload(c *fiber.Ctx) ([]byte, error) {
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		fh, err := c.FormFile("image")
		if err != nil {
			fh, err = c.FormFile("frame")
		}
		if err != nil {
			return nil, apperrors.InvalidInput("multipart field \"image\" is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.InvalidInput("image upload is unreadable")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, apperrors.InvalidInput("image upload is unreadable")
		}
		return data, nil
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		var req dto.ProcessFrameRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, apperrors.InvalidInput("invalid request body")
		}
		payload := req.Payload()
		if payload == "" {
			return nil, apperrors.InvalidInput("image is required")
		}
		return []byte(payload), nil
	default:
		return c.Body(), nil
	}
}

// GetConfig returns the parameters of the globally selected AC model
func (h *DetectionHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.configResolver.ResolveActive(c.UserContext())
	if err != nil {
		return utils.ServiceErrorResponse(c, "No active inspection configuration", err)
	}
	return utils.SuccessResponse(c, "Configuration retrieved", dto.ActiveConfigResponse{
		ModelID:             cfg.ModelID,
		ModelName:           cfg.ModelName,
		TargetCount:         cfg.TargetCount,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		CycleTimeSeconds:    cfg.CycleTimeSeconds,
		EngineID:            cfg.EngineID,
	})
}

// SaveInspection godoc
// @Summary Persist the consolidated verdict of one inspection cycle
// @Tags Detection
// @Accept json
// @Produce json
// @Param request body dto.SaveInspectionRequest true "Inspection"
// @Success 201 {object} dto.SaveInspectionResponse
// @Router /detection/save-inspection [post]
func (h *DetectionHandler) SaveInspection(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.SaveInspectionRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid inspection", err)
	}

	record, err := h.inspectionService.Save(c.UserContext(), actor, services.SaveInspectionInput{
		ModelName:           req.ModelName,
		Status:              req.Status,
		DetectedCount:       *req.DetectedCount,
		ExpectedCount:       *req.ExpectedCount,
		Confidence:          req.Confidence,
		InferenceDurationMs: req.InferenceDurationMs,
		ImageReference:      req.ImageReference,
	})
	if err != nil {
		logger.InspectionError("save_rejected", "Inspection rejected", err, map[string]interface{}{
			"user_id":    actor.ID.String(),
			"model_name": req.ModelName,
		})
		return utils.ServiceErrorResponse(c, "Failed to save inspection", err)
	}

	return utils.CreatedResponse(c, "Inspection saved", dto.SaveInspectionResponse{
		ID:     record.ID,
		Status: string(record.Status),
		Delta:  record.Delta,
	})
}
