package repositories

import (
	"context"

	"github.com/google/uuid"

	"screw-inspection/domain/models"
)

type InferenceEngineRepository interface {
	Create(ctx context.Context, engine *models.InferenceEngine) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InferenceEngine, error)

	// GetActive returns apperrors.ErrNotFound when no engine is active
	GetActive(ctx context.Context) (*models.InferenceEngine, error)
	List(ctx context.Context) ([]models.InferenceEngine, error)
	ListArtifactNames(ctx context.Context) ([]string, error)

	// DeactivateAll clears the active flag on every engine except keepID
	DeactivateAll(ctx context.Context, keepID uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	CountACModelRefs(ctx context.Context, id uuid.UUID) (int64, error)
	CountInspectionRefs(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
