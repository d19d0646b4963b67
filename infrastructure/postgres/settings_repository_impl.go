package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/pkg/apperrors"
)

type SettingsRepositoryImpl struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) repositories.SettingsRepository {
	return &SettingsRepositoryImpl{db: db}
}

// GetOrCreate inserts the singleton row with ON CONFLICT DO NOTHING so
// concurrent first reads from several instances converge on one row.
func (r *SettingsRepositoryImpl) GetOrCreate(ctx context.Context) (*models.GlobalSettings, error) {
	db := conn(ctx, r.db)

	var settings models.GlobalSettings
	err := db.Where("id = ?", models.GlobalSettingsID).Limit(1).Find(&settings).Error
	if err != nil {
		return nil, apperrors.Storage("load settings", err)
	}
	if settings.ID == models.GlobalSettingsID {
		return &settings, nil
	}

	seed := models.GlobalSettings{ID: models.GlobalSettingsID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, apperrors.Storage("create settings", err)
	}
	if err := db.Where("id = ?", models.GlobalSettingsID).First(&settings).Error; err != nil {
		return nil, apperrors.Storage("reload settings", err)
	}
	return &settings, nil
}

func (r *SettingsRepositoryImpl) Update(ctx context.Context, settings *models.GlobalSettings) error {
	settings.ID = models.GlobalSettingsID
	return apperrors.Storage("update settings", conn(ctx, r.db).Save(settings).Error)
}
