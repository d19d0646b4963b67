package handlers

import (
	"gorm.io/gorm"

	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/inference"
	"screw-inspection/infrastructure/redis"
	"screw-inspection/pkg/scheduler"
)

// Services contains all the services needed for handlers
type Services struct {
	AuthService       services.AuthService
	UserService       services.UserService
	EngineService     services.EngineService
	ACModelService    services.ACModelService
	SettingsService   services.SettingsService
	DetectionService  services.DetectionService
	ConfigResolver    services.ConfigResolver
	InspectionService services.InspectionService
	DashboardService  services.DashboardService
	AuditService      services.AuditService
}

// Infrastructure is what the health checks inspect and the maintenance
// endpoints drive. Redis, Inference and Scheduler may be nil.
type Infrastructure struct {
	DB        *gorm.DB
	Redis     *redis.RedisClient
	Inference *inference.Client
	Scheduler scheduler.Scheduler
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Engine    *EngineHandler
	ACModel   *ACModelHandler
	Settings  *SettingsHandler
	Detection *DetectionHandler
	History   *HistoryHandler
	Dashboard *DashboardHandler
	AuditLog  *AuditLogHandler
	Log       *LogHandler
	Health    *HealthHandler

	Maintenance *MaintenanceHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(svc *Services, infra *Infrastructure) *Handlers {
	h := &Handlers{
		Auth:      NewAuthHandler(svc.AuthService),
		User:      NewUserHandler(svc.UserService),
		Engine:    NewEngineHandler(svc.EngineService),
		ACModel:   NewACModelHandler(svc.ACModelService),
		Settings:  NewSettingsHandler(svc.SettingsService),
		Detection: NewDetectionHandler(svc.DetectionService, svc.ConfigResolver, svc.InspectionService),
		History:   NewHistoryHandler(svc.InspectionService),
		Dashboard: NewDashboardHandler(svc.DashboardService),
		AuditLog:  NewAuditLogHandler(svc.AuditService),
		Log:       NewLogHandler(),
	}

	if infra != nil {
		h.Health = NewHealthHandler(infra.DB, infra.Redis, infra.Inference, svc.EngineService)
		if infra.Scheduler != nil {
			h.Maintenance = NewMaintenanceHandler(infra.Scheduler)
		}
	}
	return h
}
