package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/pkg/apperrors"
)

type ACModelRepositoryImpl struct {
	db *gorm.DB
}

func NewACModelRepository(db *gorm.DB) repositories.ACModelRepository {
	return &ACModelRepositoryImpl{db: db}
}

func (r *ACModelRepositoryImpl) Create(ctx context.Context, model *models.ACModel) error {
	return apperrors.Storage("create ac model", conn(ctx, r.db).Omit("Engine").Create(model).Error)
}

func (r *ACModelRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.ACModel, error) {
	var model models.ACModel
	if err := conn(ctx, r.db).Preload("Engine").Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err, "ac model")
	}
	return &model, nil
}

func (r *ACModelRepositoryImpl) GetActiveByName(ctx context.Context, name string) (*models.ACModel, error) {
	var model models.ACModel
	if err := conn(ctx, r.db).Where("name = ? AND active = ?", name, true).First(&model).Error; err != nil {
		return nil, notFound(err, "ac model "+name)
	}
	return &model, nil
}

func (r *ACModelRepositoryImpl) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&models.ACModel{}).Where("name = ?", name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Storage("check ac model name", err)
	}
	return count > 0, nil
}

func (r *ACModelRepositoryImpl) List(ctx context.Context, includeInactive bool) ([]models.ACModel, error) {
	var list []models.ACModel
	query := conn(ctx, r.db).Preload("Engine")
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	err := query.Order("name ASC").Find(&list).Error
	return list, apperrors.Storage("list ac models", err)
}

func (r *ACModelRepositoryImpl) Update(ctx context.Context, model *models.ACModel) error {
	return apperrors.Storage("update ac model", conn(ctx, r.db).Omit("Engine").Save(model).Error)
}
