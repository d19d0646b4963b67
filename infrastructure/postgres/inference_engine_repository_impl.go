package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/pkg/apperrors"
)

type InferenceEngineRepositoryImpl struct {
	db *gorm.DB
}

func NewInferenceEngineRepository(db *gorm.DB) repositories.InferenceEngineRepository {
	return &InferenceEngineRepositoryImpl{db: db}
}

func (r *InferenceEngineRepositoryImpl) Create(ctx context.Context, engine *models.InferenceEngine) error {
	return apperrors.Storage("create engine", conn(ctx, r.db).Create(engine).Error)
}

func (r *InferenceEngineRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.InferenceEngine, error) {
	var engine models.InferenceEngine
	if err := conn(ctx, r.db).Where("id = ?", id).First(&engine).Error; err != nil {
		return nil, notFound(err, "inference engine")
	}
	return &engine, nil
}

func (r *InferenceEngineRepositoryImpl) GetActive(ctx context.Context) (*models.InferenceEngine, error) {
	var engine models.InferenceEngine
	if err := conn(ctx, r.db).Where("active = ?", true).First(&engine).Error; err != nil {
		return nil, notFound(err, "active inference engine")
	}
	return &engine, nil
}

func (r *InferenceEngineRepositoryImpl) List(ctx context.Context) ([]models.InferenceEngine, error) {
	var engines []models.InferenceEngine
	err := conn(ctx, r.db).Order("created_at DESC").Find(&engines).Error
	return engines, apperrors.Storage("list engines", err)
}

func (r *InferenceEngineRepositoryImpl) ListArtifactNames(ctx context.Context) ([]string, error) {
	var names []string
	err := conn(ctx, r.db).Model(&models.InferenceEngine{}).Pluck("artifact_name", &names).Error
	return names, apperrors.Storage("list artifact names", err)
}

func (r *InferenceEngineRepositoryImpl) DeactivateAll(ctx context.Context, keepID uuid.UUID) error {
	err := conn(ctx, r.db).Model(&models.InferenceEngine{}).
		Where("active = ? AND id <> ?", true, keepID).
		Update("active", false).Error
	return apperrors.Storage("deactivate engines", err)
}

func (r *InferenceEngineRepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := conn(ctx, r.db).Model(&models.InferenceEngine{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return apperrors.Storage("set engine active", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("inference engine not found")
	}
	return nil
}

func (r *InferenceEngineRepositoryImpl) CountACModelRefs(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ACModel{}).Where("engine_id = ?", id).Count(&count).Error
	return count, apperrors.Storage("count ac model references", err)
}

func (r *InferenceEngineRepositoryImpl) CountInspectionRefs(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.InspectionRecord{}).Where("engine_id = ?", id).Count(&count).Error
	return count, apperrors.Storage("count inspection references", err)
}

func (r *InferenceEngineRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.InferenceEngine{})
	if result.Error != nil {
		return apperrors.Storage("delete engine", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("inference engine not found")
	}
	return nil
}
