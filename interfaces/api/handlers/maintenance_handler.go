package handlers

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/scheduler"
	"screw-inspection/pkg/utils"
)

type MaintenanceHandler struct {
	scheduler scheduler.Scheduler
}

func NewMaintenanceHandler(s scheduler.Scheduler) *MaintenanceHandler {
	return &MaintenanceHandler{scheduler: s}
}

type JobResponse struct {
	ID        string     `json:"id"`
	CronExpr  string     `json:"cron_expr"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Runs      int        `json:"runs"`
}

func jobResponse(info scheduler.JobInfo) JobResponse {
	return JobResponse{
		ID:        info.ID,
		CronExpr:  info.CronExpr,
		LastRun:   info.LastRun,
		NextRun:   info.NextRun,
		LastError: info.LastError,
		Runs:      info.Runs,
	}
}

// ListJobs godoc
// @Summary List scheduled maintenance jobs
// @Tags Maintenance
// @Produce json
// @Success 200 {array} JobResponse
// @Router /admin/maintenance/jobs [get]
func (h *MaintenanceHandler) ListJobs(c *fiber.Ctx) error {
	jobs := h.scheduler.ListJobs()
	resp := make([]JobResponse, 0, len(jobs))
	for _, info := range jobs {
		resp = append(resp, jobResponse(info))
	}
	sort.Slice(resp, func(i, j int) bool { return resp[i].ID < resp[j].ID })

	return utils.SuccessResponse(c, "Jobs retrieved successfully", fiber.Map{
		"running": h.scheduler.IsRunning(),
		"jobs":    resp,
	})
}

// RunJob executes a job now on the request goroutine
// @Summary Run a maintenance job immediately
// @Tags Maintenance
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobResponse
// @Router /admin/maintenance/jobs/{id}/run [post]
func (h *MaintenanceHandler) RunJob(c *fiber.Ctx) error {
	id := c.Params("id")
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	logger.Scheduler("job_run_requested", "Manual job run requested", map[string]interface{}{
		"job_id": id,
		"actor":  actor.Username,
	})
	if err := h.scheduler.RunNow(id); err != nil {
		return utils.ServiceErrorResponse(c, "Job did not complete", err)
	}
	return utils.SuccessResponse(c, "Job completed", jobResponse(h.scheduler.ListJobs()[id]))
}
