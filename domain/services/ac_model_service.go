package services

import (
	"context"

	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
)

type ACModelService interface {
	List(ctx context.Context, includeInactive bool) ([]models.ACModel, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ACModel, error)
	Create(ctx context.Context, actor Actor, req *dto.CreateACModelRequest) (*models.ACModel, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *dto.UpdateACModelRequest) (*models.ACModel, error)
	// Delete is a soft delete
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}
