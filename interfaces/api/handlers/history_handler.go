package handlers

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

type HistoryHandler struct {
	inspectionService services.InspectionService
}

func NewHistoryHandler(inspectionService services.InspectionService) *HistoryHandler {
	return &HistoryHandler{inspectionService: inspectionService}
}

func historyQuery(c *fiber.Ctx) services.InspectionQuery {
	page, limit, _ := dto.NormalizePage(c.QueryInt("page", 1), c.QueryInt("limit", dto.DefaultPageSize))
	return services.InspectionQuery{
		Team:   c.Query("team"),
		Status: c.Query("status"),
		Days:   c.QueryInt("days", 0),
		Page:   page,
		Limit:  limit,
	}
}

// UserHistory lists the caller's own inspections
func (h *HistoryHandler) UserHistory(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	q := historyQuery(c)
	records, total, err := h.inspectionService.ListForUser(c.UserContext(), actor, q)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get history", err)
	}
	return utils.SuccessResponse(c, "History retrieved successfully", dto.InspectionListResponse{
		Inspections: dto.InspectionsToResponses(records),
		Meta:        dto.NewPaginationMeta(total, q.Page, q.Limit),
	})
}

// TeamHistory lists the caller's team; admins may pass ?team=
func (h *HistoryHandler) TeamHistory(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	q := historyQuery(c)
	records, total, err := h.inspectionService.ListForTeam(c.UserContext(), actor, q)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get team history", err)
	}
	return utils.SuccessResponse(c, "Team history retrieved successfully", dto.InspectionListResponse{
		Inspections: dto.InspectionsToResponses(records),
		Meta:        dto.NewPaginationMeta(total, q.Page, q.Limit),
	})
}

var exportHeader = []string{
	"id", "timestamp", "model_name", "username", "team", "status",
	"detected_count", "expected_count", "delta", "confidence", "inference_duration_ms", "engine_id",
}

// Export streams the caller-visible history as CSV
func (h *HistoryHandler) Export(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	records, err := h.inspectionService.Export(c.UserContext(), actor, historyQuery(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to export history", err)
	}

	filename := fmt.Sprintf("inspections_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Response().BodyWriter())
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for i := range records {
		if err := w.Write(exportRow(&records[i])); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	logger.Inspection("exported", "Inspection history exported", map[string]interface{}{
		"user_id": actor.ID.String(),
		"rows":    len(records),
	})
	return nil
}

func exportRow(r *models.InspectionRecord) []string {
	modelName, username := "", ""
	if r.ACModel != nil {
		modelName = r.ACModel.Name
	}
	if r.User != nil {
		username = r.User.Username
	}
	return []string{
		r.ID.String(),
		r.CreatedAt.UTC().Format(time.RFC3339),
		modelName,
		username,
		r.Team,
		string(r.Status),
		strconv.Itoa(r.DetectedCount),
		strconv.Itoa(r.ExpectedCount),
		strconv.Itoa(r.Delta),
		strconv.FormatFloat(r.Confidence, 'f', 4, 64),
		strconv.FormatFloat(r.InferenceDurationMs, 'f', 2, 64),
		r.EngineID.String(),
	}
}
