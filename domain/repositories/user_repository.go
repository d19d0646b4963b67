package repositories

import (
	"context"

	"github.com/google/uuid"

	"screw-inspection/domain/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// ExistsByUsernameOrEmail ignores the user with excludeID (uuid.Nil to check all)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, search string, offset, limit int) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
}
