package di

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"screw-inspection/application/serviceimpl"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/inference"
	"screw-inspection/infrastructure/mqtt"
	"screw-inspection/infrastructure/postgres"
	"screw-inspection/infrastructure/redis"
	"screw-inspection/infrastructure/storage"
	"screw-inspection/infrastructure/vision"
	"screw-inspection/infrastructure/websocket"
	"screw-inspection/infrastructure/worker"
	"screw-inspection/interfaces/api/handlers"
	"screw-inspection/pkg/config"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/metrics"
	"screw-inspection/pkg/scheduler"
)

const resolverCacheTTL = 30 * time.Second

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB              *gorm.DB
	RedisClient     *redis.RedisClient
	Artifacts       *storage.LocalStorage
	InferenceClient *inference.Client
	Registry        *prometheus.Registry
	Metrics         *metrics.InspectionMetrics
	Scheduler       scheduler.Scheduler
	WSManager       *websocket.Manager
	MQTTPublisher   *mqtt.Publisher
	Invalidator     services.InvalidationPublisher

	// Repositories
	Transactor           repositories.Transactor
	UserRepository       repositories.UserRepository
	EngineRepository     repositories.InferenceEngineRepository
	ACModelRepository    repositories.ACModelRepository
	SettingsRepository   repositories.SettingsRepository
	InspectionRepository repositories.InspectionRepository
	AuditLogRepository   repositories.AuditLogRepository

	// Services
	DetectorHandle    *serviceimpl.DetectorHandleImpl
	ConfigResolver    *serviceimpl.ConfigResolverImpl
	AuditService      services.AuditService
	AuthService       services.AuthService
	UserService       services.UserService
	EngineService     services.EngineService
	ACModelService    services.ACModelService
	SettingsService   services.SettingsService
	DetectionService  services.DetectionService
	InspectionService services.InspectionService
	DashboardService  services.DashboardService

	// Workers
	InvalidationWorker *worker.InvalidationWorker
	ArtifactSweeper    *worker.ArtifactSweeper
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	if err := c.initWorkers(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Startup("config_loaded", "Configuration loaded", map[string]interface{}{
		"env":       cfg.App.Env,
		"db_driver": cfg.Database.Driver,
	})
	return nil
}

func (c *Container) initInfrastructure() error {
	// Initialize Database
	dbConfig := postgres.DatabaseConfig{
		Driver:     c.Config.Database.Driver,
		Host:       c.Config.Database.Host,
		Port:       c.Config.Database.Port,
		User:       c.Config.Database.User,
		Password:   c.Config.Database.Password,
		DBName:     c.Config.Database.DBName,
		SSLMode:    c.Config.Database.SSLMode,
		SQLitePath: c.Config.Database.SQLitePath,
		Debug:      c.Config.App.Env == "development",
	}

	db, err := postgres.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Startup("db_connected", "Database connected", map[string]interface{}{"driver": dbConfig.Driver})

	// Run migrations
	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Startup("db_migrated", "Database migrated", nil)

	// Initialize Redis
	c.Invalidator = redis.NopBus{}
	if c.Config.Redis.Enabled {
		redisConfig := redis.RedisConfig{
			Host:     c.Config.Redis.Host,
			Port:     c.Config.Redis.Port,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		}
		c.RedisClient = redis.NewRedisClient(redisConfig)

		// Test Redis connection
		if err := c.RedisClient.Ping(context.Background()); err != nil {
			logger.StartupWarn("redis_connection_failed", "Redis connection failed, cache invalidation stays local until it recovers", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_connected", "Redis connected", nil)
		}
		c.Invalidator = redis.NewInvalidationBus(c.RedisClient)
	} else {
		logger.Startup("redis_disabled", "Redis disabled, running as a single instance", nil)
	}

	// Initialize artifact storage
	artifacts, err := storage.NewLocalStorage(c.Config.Storage.UploadsDir)
	if err != nil {
		return err
	}
	c.Artifacts = artifacts
	logger.Startup("storage_initialized", "Artifact storage initialized", map[string]interface{}{"dir": artifacts.Dir()})

	// Initialize inference sidecar client
	c.InferenceClient = inference.NewClient(c.Config.Inference.BaseURL, c.Config.Inference.Timeout)
	healthCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if health, err := c.InferenceClient.Health(healthCtx); err != nil {
		logger.StartupWarn("inference_unreachable", "Inference API not reachable, detection will fail until it is", map[string]interface{}{
			"url":   c.Config.Inference.BaseURL,
			"error": err.Error(),
		})
	} else {
		logger.Startup("inference_connected", "Inference API reachable", map[string]interface{}{
			"version": health.Version,
			"device":  health.Device,
		})
	}

	// Initialize metrics
	if c.Config.Metrics.Enabled {
		c.Registry = prometheus.NewRegistry()
		c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := metrics.NewInspectionMetrics(c.Registry)
		if err != nil {
			return err
		}
		c.Metrics = m
		logger.Startup("metrics_initialized", "Prometheus metrics registered", nil)
	}

	// Initialize live publishers
	c.WSManager = websocket.NewManager()
	if c.Config.MQTT.Enabled {
		publisher, err := mqtt.Connect(mqtt.Config{
			Broker:      c.Config.MQTT.Broker,
			ClientID:    c.Config.MQTT.ClientID,
			Username:    c.Config.MQTT.Username,
			Password:    c.Config.MQTT.Password,
			TopicPrefix: c.Config.MQTT.TopicPrefix,
		})
		if err != nil {
			logger.StartupWarn("mqtt_connect_failed", "MQTT broker unavailable, inspections will not be published", map[string]interface{}{"error": err.Error()})
		} else {
			c.MQTTPublisher = publisher
			logger.Startup("mqtt_connected", "MQTT publisher initialized", map[string]interface{}{"broker": c.Config.MQTT.Broker})
		}
	}

	return nil
}

func (c *Container) initRepositories() error {
	c.Transactor = postgres.NewTransactionManager(c.DB)
	c.UserRepository = postgres.NewUserRepository(c.DB)
	c.EngineRepository = postgres.NewInferenceEngineRepository(c.DB)
	c.ACModelRepository = postgres.NewACModelRepository(c.DB)
	c.SettingsRepository = postgres.NewSettingsRepository(c.DB)
	c.InspectionRepository = postgres.NewInspectionRepository(c.DB)
	c.AuditLogRepository = postgres.NewAuditLogRepository(c.DB)
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) initServices() error {
	cfg := c.Config

	instanceID := uuid.NewString()
	if bus, ok := c.Invalidator.(*redis.InvalidationBus); ok {
		instanceID = bus.InstanceID()
	}
	loader := inference.NewSidecarLoader(c.InferenceClient, c.Artifacts, instanceID)
	c.DetectorHandle = serviceimpl.NewDetectorHandle(c.EngineRepository, loader, c.Metrics, cfg.Inference.RetryBackoff)
	c.ConfigResolver = serviceimpl.NewConfigResolver(c.SettingsRepository, c.ACModelRepository, resolverCacheTTL)

	c.AuditService = serviceimpl.NewAuditService(c.AuditLogRepository)
	c.AuthService = serviceimpl.NewAuthService(c.UserRepository, c.SettingsRepository, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	c.UserService = serviceimpl.NewUserService(c.UserRepository, c.Transactor, c.AuditService)
	c.EngineService = serviceimpl.NewEngineService(
		c.EngineRepository,
		c.Transactor,
		c.Artifacts,
		c.AuditService,
		c.DetectorHandle,
		c.Invalidator,
		cfg.Storage.MaxArtifactBytes,
	)
	c.ACModelService = serviceimpl.NewACModelService(c.ACModelRepository, c.EngineRepository, c.Transactor, c.AuditService, c.ConfigResolver, c.Invalidator)
	c.SettingsService = serviceimpl.NewSettingsService(c.SettingsRepository, c.ACModelRepository, c.Transactor, c.AuditService, c.ConfigResolver, c.Invalidator)

	params := services.DetectParams{
		ConfidenceFloor: cfg.Inference.ConfidenceFloor,
		IoUThreshold:    cfg.Inference.IoUThreshold,
		ImageSize:       cfg.Inference.ImageSize,
		MaxDetections:   cfg.Inference.MaxDetections,
	}
	c.DetectionService = serviceimpl.NewDetectionService(c.DetectorHandle, vision.NewDecoder(), params, cfg.Inference.MaxFrameBytes, c.Metrics)

	publishers := []services.InspectionPublisher{c.WSManager}
	if c.MQTTPublisher != nil {
		publishers = append(publishers, c.MQTTPublisher)
	}
	c.InspectionService = serviceimpl.NewInspectionService(
		c.InspectionRepository,
		c.ACModelRepository,
		c.EngineRepository,
		c.UserRepository,
		c.Metrics,
		publishers...,
	)
	c.DashboardService = serviceimpl.NewDashboardService(c.InspectionRepository)

	logger.Startup("services_initialized", "Services initialized", nil)
	return nil
}

func (c *Container) initScheduler() error {
	c.Scheduler = scheduler.NewScheduler()
	c.ArtifactSweeper = worker.NewArtifactSweeper(c.EngineRepository, c.Artifacts, c.Config.Scheduler.OrphanGracePeriod)

	cron := c.Config.Scheduler.ArtifactSweepCron
	if err := c.Scheduler.AddJob(worker.ArtifactSweepJobID, cron, c.ArtifactSweeper.Job()); err != nil {
		logger.StartupWarn("artifact_sweep_schedule_failed", "Failed to schedule artifact sweep", map[string]interface{}{
			"cron":  cron,
			"error": err.Error(),
		})
	} else {
		logger.Startup("artifact_sweep_scheduled", "Artifact sweep scheduled", map[string]interface{}{"cron": cron})
	}

	// Start the scheduler
	c.Scheduler.Start()
	logger.Startup("scheduler_started", "Scheduler started", nil)
	return nil
}

func (c *Container) initWorkers() error {
	bus, ok := c.Invalidator.(*redis.InvalidationBus)
	if !ok {
		return nil
	}

	c.InvalidationWorker = worker.NewInvalidationWorker(bus, c.DetectorHandle, c.ConfigResolver)
	c.InvalidationWorker.Start()
	return nil
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	// Stop invalidation worker
	if c.InvalidationWorker != nil && c.InvalidationWorker.IsRunning() {
		c.InvalidationWorker.Stop()
	}

	// Stop scheduler
	if c.Scheduler != nil {
		if c.Scheduler.IsRunning() {
			c.Scheduler.Stop()
			logger.Startup("scheduler_stopped", "Scheduler stopped", nil)
		} else {
			logger.Startup("scheduler_already_stopped", "Scheduler was already stopped", nil)
		}
	}

	// Drop live subscribers before the publishers go away
	if c.WSManager != nil {
		c.WSManager.Shutdown()
	}
	if c.MQTTPublisher != nil {
		c.MQTTPublisher.Close()
		logger.Startup("mqtt_closed", "MQTT publisher closed", nil)
	}

	// Unload the detector from the sidecar
	if c.DetectorHandle != nil {
		c.DetectorHandle.Invalidate()
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.StartupWarn("redis_close_failed", "Failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_closed", "Redis connection closed", nil)
		}
	}

	// Close database connection
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.StartupWarn("db_close_failed", "Failed to close database connection", map[string]interface{}{"error": err.Error()})
			} else {
				logger.Startup("db_closed", "Database connection closed", nil)
			}
		}
	}

	logger.Startup("cleanup_completed", "Cleanup completed", nil)
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		AuthService:       c.AuthService,
		UserService:       c.UserService,
		EngineService:     c.EngineService,
		ACModelService:    c.ACModelService,
		SettingsService:   c.SettingsService,
		DetectionService:  c.DetectionService,
		ConfigResolver:    c.ConfigResolver,
		InspectionService: c.InspectionService,
		DashboardService:  c.DashboardService,
		AuditService:      c.AuditService,
	}
}

func (c *Container) GetHandlerInfrastructure() *handlers.Infrastructure {
	return &handlers.Infrastructure{
		DB:        c.DB,
		Redis:     c.RedisClient,
		Inference: c.InferenceClient,
		Scheduler: c.Scheduler,
	}
}
