package services

import (
	"context"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
)

type SettingsService interface {
	// Get returns the settings row and the selected AC model, if any
	Get(ctx context.Context) (*models.GlobalSettings, *models.ACModel, error)
	Update(ctx context.Context, actor Actor, req *dto.UpdateSettingsRequest) (*models.GlobalSettings, *models.ACModel, error)
}
