package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/utils"
)

type AuditLogHandler struct {
	auditService services.AuditService
}

func NewAuditLogHandler(auditService services.AuditService) *AuditLogHandler {
	return &AuditLogHandler{auditService: auditService}
}

func (h *AuditLogHandler) List(c *fiber.Ctx) error {
	var req dto.AuditLogListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", err)
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid query", err)
	}

	filter := repositories.AuditLogFilter{
		AffectedTable: req.AffectedTable,
		Action:        models.AuditAction(strings.ToUpper(req.Action)),
	}
	if req.ActorID != "" {
		id := uuid.MustParse(req.ActorID)
		filter.ActorID = &id
	}

	page, limit, _ := dto.NormalizePage(req.Page, req.Limit)
	logs, total, err := h.auditService.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to list audit logs", err)
	}
	return utils.SuccessResponse(c, "Audit logs retrieved successfully", dto.AuditLogListResponse{
		Logs: dto.AuditLogsToResponses(logs),
		Meta: dto.NewPaginationMeta(total, page, limit),
	})
}
