package repositories

import (
	"context"

	"github.com/google/uuid"

	"screw-inspection/domain/models"
)

type ACModelRepository interface {
	Create(ctx context.Context, model *models.ACModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ACModel, error)
	// GetActiveByName only matches models that are not soft-deleted
	GetActiveByName(ctx context.Context, name string) (*models.ACModel, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, includeInactive bool) ([]models.ACModel, error)
	Update(ctx context.Context, model *models.ACModel) error
}
