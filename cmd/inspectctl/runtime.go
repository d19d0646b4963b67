package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"screw-inspection/application/serviceimpl"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/inference"
	"screw-inspection/infrastructure/postgres"
	"screw-inspection/infrastructure/redis"
	"screw-inspection/infrastructure/storage"
	"screw-inspection/pkg/config"
	"screw-inspection/pkg/logger"
)

// cliActor is recorded as the actor of every mutation made from the command line
var cliActor = services.Actor{Username: "inspectctl", Role: models.RoleAdmin, IP: "cli"}

// runtime is the subset of the server's wiring the commands need. It never
// starts the scheduler or the invalidation listener.
type runtime struct {
	cfg      *config.Config
	db       *gorm.DB
	redis    *redis.RedisClient
	users    repositories.UserRepository
	settings repositories.SettingsRepository
	engines  services.EngineService
	handle   services.DetectorHandle
}

func openRuntime() (*runtime, error) {
	if err := logger.Init("logs", true); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Driver:     cfg.Database.Driver,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		DBName:     cfg.Database.DBName,
		SSLMode:    cfg.Database.SSLMode,
		SQLitePath: cfg.Database.SQLitePath,
	})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	artifacts, err := storage.NewLocalStorage(cfg.Storage.UploadsDir)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:      cfg,
		db:       db,
		users:    postgres.NewUserRepository(db),
		settings: postgres.NewSettingsRepository(db),
	}

	var bus services.InvalidationPublisher = redis.NopBus{}
	if cfg.Redis.Enabled {
		rt.redis = redis.NewRedisClient(redis.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		bus = redis.NewInvalidationBus(rt.redis)
	}

	engineRepo := postgres.NewInferenceEngineRepository(db)
	client := inference.NewClient(cfg.Inference.BaseURL, cfg.Inference.Timeout)
	loader := inference.NewSidecarLoader(client, artifacts, "inspectctl-"+uuid.NewString()[:8])
	handle := serviceimpl.NewDetectorHandle(engineRepo, loader, nil, cfg.Inference.RetryBackoff)
	rt.handle = handle
	rt.engines = serviceimpl.NewEngineService(
		engineRepo,
		postgres.NewTransactionManager(db),
		artifacts,
		serviceimpl.NewAuditService(postgres.NewAuditLogRepository(db)),
		handle,
		bus,
		cfg.Storage.MaxArtifactBytes,
	)
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Default().Close()
}

func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
