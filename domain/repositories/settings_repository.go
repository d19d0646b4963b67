package repositories

import (
	"context"

	"screw-inspection/domain/models"
)

type SettingsRepository interface {
	// GetOrCreate returns the singleton row, inserting defaults when missing
	GetOrCreate(ctx context.Context) (*models.GlobalSettings, error)
	Update(ctx context.Context, settings *models.GlobalSettings) error
}
