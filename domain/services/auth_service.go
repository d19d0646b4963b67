package services

import (
	"context"

	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
)

type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)

	// Register creates an operator account when public registration is enabled
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)

	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}
