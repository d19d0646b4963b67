package services

import (
	"context"

	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
)

type UserService interface {
	List(ctx context.Context, search string, page, limit int) ([]models.User, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, actor Actor, req *dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) (*models.User, error)
}
