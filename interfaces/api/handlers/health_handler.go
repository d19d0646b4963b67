package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/inference"
	"screw-inspection/infrastructure/redis"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db              *gorm.DB
	redisClient     *redis.RedisClient
	inferenceClient *inference.Client
	engineService   services.EngineService
}

// NewHealthHandler accepts nil redis and inference clients when those
// components are disabled.
func NewHealthHandler(
	db *gorm.DB,
	redisClient *redis.RedisClient,
	inferenceClient *inference.Client,
	engineService services.EngineService,
) *HealthHandler {
	return &HealthHandler{
		db:              db,
		redisClient:     redisClient,
		inferenceClient: inferenceClient,
		engineService:   engineService,
	}
}

// ComponentHealth represents health status of a component
type ComponentHealth struct {
	Status  string `json:"status"` // "ok", "error", "unavailable"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type DetailedHealthResponse struct {
	Status     string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

// DetailedHealth godoc
// @Summary Get detailed system health
// @Description Returns detailed health status of all system components
// @Tags Health
// @Produce json
// @Success 200 {object} DetailedHealthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) DetailedHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	response := DetailedHealthResponse{
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}

	dbHealth := h.checkDatabase(ctx)
	response.Components["database"] = dbHealth
	response.Components["redis"] = h.checkRedis(ctx)
	response.Components["inference_api"] = h.checkInference(ctx)
	response.Components["detector"] = h.checkDetector()

	allHealthy := true
	for name, component := range response.Components {
		if name != "database" && component.Status == "error" {
			allHealthy = false
		}
	}

	switch {
	case dbHealth.Status != "ok":
		response.Status = "unhealthy"
	case !allHealthy:
		response.Status = "degraded"
	default:
		response.Status = "healthy"
	}

	statusCode := fiber.StatusOK
	if response.Status == "unhealthy" {
		statusCode = fiber.StatusServiceUnavailable
	}
	return c.Status(statusCode).JSON(response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.db == nil {
		return ComponentHealth{Status: "error", Message: "Database not configured"}
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return ComponentHealth{Status: "error", Message: "Failed to get database connection: " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Database ping failed: " + err.Error()}
	}

	return ComponentHealth{Status: "ok", Message: "Connected", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.redisClient == nil {
		return ComponentHealth{Status: "unavailable", Message: "Redis not configured"}
	}
	if err := h.redisClient.Ping(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Redis ping failed: " + err.Error()}
	}

	return ComponentHealth{Status: "ok", Message: "Connected", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkInference(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.inferenceClient == nil {
		return ComponentHealth{Status: "unavailable", Message: "Inference API not configured"}
	}

	health, err := h.inferenceClient.Health(ctx)
	if err != nil {
		return ComponentHealth{Status: "error", Message: "Inference API health check failed: " + err.Error()}
	}

	return ComponentHealth{
		Status:  "ok",
		Message: "Version: " + health.Version + ", Device: " + health.Device,
		Latency: time.Since(start).String(),
	}
}

// checkDetector reports the cached handle state without forcing a load
func (h *HealthHandler) checkDetector() ComponentHealth {
	if h.engineService == nil {
		return ComponentHealth{Status: "unavailable", Message: "Engine registry not configured"}
	}

	status := h.engineService.DetectorStatus()
	switch status.State {
	case services.HandleReady:
		return ComponentHealth{Status: "ok", Message: "Engine " + status.Engine.ID.String() + " loaded"}
	case services.HandleLoadFailed:
		return ComponentHealth{Status: "error", Message: status.LastError}
	case services.HandleNoEngine:
		return ComponentHealth{Status: "unavailable", Message: "No active engine"}
	default:
		return ComponentHealth{Status: "unavailable", Message: "Detector not loaded yet"}
	}
}
