package serviceimpl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
)

func TestConfigResolver_UnconfiguredOnFreshInstall(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.resolver.ResolveActive(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUnconfigured)
}

func TestConfigResolver_ResolvesSelectedModel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	engine := env.register(t, admin, "yolov8", "1.0")
	model := env.createModel(t, admin, "UnitX", engine)
	id := model.ID.String()
	_, _, err := env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ActiveModelID: &id})
	require.NoError(t, err)

	cfg, err := env.resolver.ResolveActive(ctx)
	require.NoError(t, err)

	assert.Equal(t, "UnitX", cfg.ModelName)
	assert.Equal(t, models.DefaultTargetCount, cfg.TargetCount)
	assert.Equal(t, models.DefaultConfidenceThreshold, cfg.ConfidenceThreshold)
	assert.Equal(t, models.DefaultCycleTimeSeconds, cfg.CycleTimeSeconds)
	assert.Equal(t, engine.ID, cfg.EngineID)
	assert.Contains(t, env.invalidator.Topics(), services.TopicConfig)
}

func TestConfigResolver_UnconfiguredAfterSoftDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	engine := env.register(t, admin, "yolov8", "1.0")
	model := env.createModel(t, admin, "UnitX", engine)
	id := model.ID.String()
	_, _, err := env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ActiveModelID: &id})
	require.NoError(t, err)
	_, err = env.resolver.ResolveActive(ctx)
	require.NoError(t, err)

	require.NoError(t, env.acModelSvc.Delete(ctx, admin, model.ID))

	_, err = env.resolver.ResolveActive(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUnconfigured)
}

// slowACModels runs afterGet once, between reading a model and returning it
type slowACModels struct {
	repositories.ACModelRepository
	afterGet func()
}

func (r *slowACModels) GetByID(ctx context.Context, id uuid.UUID) (*models.ACModel, error) {
	model, err := r.ACModelRepository.GetByID(ctx, id)
	if hook := r.afterGet; hook != nil {
		r.afterGet = nil
		hook()
	}
	return model, err
}

func TestConfigResolver_ReadOverlappingDeleteIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	engine := env.register(t, admin, "yolov8", "1.0")
	model := env.createModel(t, admin, "UnitX", engine)
	id := model.ID.String()
	_, _, err := env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ActiveModelID: &id})
	require.NoError(t, err)

	repo := &slowACModels{ACModelRepository: env.acModels}
	resolver := NewConfigResolver(env.settings, repo, time.Minute)
	repo.afterGet = func() {
		require.NoError(t, env.acModelSvc.Delete(ctx, admin, model.ID))
		resolver.Invalidate()
	}

	cfg, err := resolver.ResolveActive(ctx)
	require.NoError(t, err, "the overlapping read still answers its own caller")
	assert.Equal(t, "UnitX", cfg.ModelName)

	_, err = resolver.ResolveActive(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUnconfigured)
}

func TestConfigResolver_UnconfiguredWhenModelRowMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	engine := env.register(t, admin, "yolov8", "1.0")
	model := env.createModel(t, admin, "UnitX", engine)
	id := model.ID.String()
	_, _, err := env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ActiveModelID: &id})
	require.NoError(t, err)

	require.NoError(t, env.db.Exec("DELETE FROM ac_models WHERE id = ?", model.ID).Error)
	env.resolver.Invalidate()

	_, err = env.resolver.ResolveActive(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUnconfigured)
}

func TestConfigResolver_UpdateInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	engine := env.register(t, admin, "yolov8", "1.0")
	model := env.createModel(t, admin, "UnitX", engine)
	id := model.ID.String()
	_, _, err := env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ActiveModelID: &id})
	require.NoError(t, err)
	_, err = env.resolver.ResolveActive(ctx)
	require.NoError(t, err)

	target := 30
	_, err = env.acModelSvc.Update(ctx, admin, model.ID, &dto.UpdateACModelRequest{TargetCount: &target})
	require.NoError(t, err)

	cfg, err := env.resolver.ResolveActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.TargetCount)
}

func TestSettingsService_RejectsInactiveModel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	engine := env.register(t, admin, "yolov8", "1.0")
	model := env.createModel(t, admin, "UnitX", engine)
	require.NoError(t, env.acModelSvc.Delete(ctx, admin, model.ID))

	id := model.ID.String()
	_, _, err := env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ActiveModelID: &id})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	settings, selected, err := env.settingsSvc.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings.ActiveModelID)
	assert.Nil(t, selected)
}

func TestSettingsService_ClearActiveModel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	engine := env.register(t, admin, "yolov8", "1.0")
	model := env.createModel(t, admin, "UnitX", engine)
	id := model.ID.String()
	allow := true
	_, _, err := env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ActiveModelID: &id, AllowPublicRegistration: &allow})
	require.NoError(t, err)

	settings, selected, err := env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ClearActiveModel: true})
	require.NoError(t, err)

	assert.Nil(t, settings.ActiveModelID)
	assert.Nil(t, selected)
	assert.True(t, settings.AllowPublicRegistration)
	_, err = env.resolver.ResolveActive(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUnconfigured)
}
