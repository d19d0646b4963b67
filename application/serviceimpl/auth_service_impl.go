package serviceimpl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

type AuthServiceImpl struct {
	userRepo     repositories.UserRepository
	settingsRepo repositories.SettingsRepository
	jwtSecret    string
	tokenTTL     time.Duration
	now          func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	settingsRepo repositories.SettingsRepository,
	jwtSecret string,
	tokenTTL time.Duration,
) services.AuthService {
	return &AuthServiceImpl{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, services.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Auth("login_failed", "Password mismatch", map[string]interface{}{"username": user.Username})
		return nil, services.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, services.ErrUserInactive
	}

	now := s.now().UTC()
	token, expiresAt, err := utils.GenerateToken(user, s.jwtSecret, s.tokenTTL, now)
	if err != nil {
		return nil, err
	}

	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.AuthError("last_login_update_failed", "Failed to record last login", err, map[string]interface{}{
			"user_id": user.ID.String(),
		})
	}

	logger.Auth("login_success", "User logged in", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
	})
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.UserToUserResponse(user),
	}, nil
}

func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.AllowPublicRegistration {
		return nil, services.ErrRegistrationClosed
	}

	user, err := newUser(ctx, s.userRepo, req.Username, req.Email, req.Password, req.Team, models.RoleOperator)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Auth("user_registered", "User self-registered", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	})
	return user, nil
}

func (s *AuthServiceImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// newUser checks uniqueness and hashes the password. It does not persist.
func newUser(ctx context.Context, repo repositories.UserRepository, username, email, password, team string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := repo.ExistsByUsernameOrEmail(ctx, username, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("username or email already registered")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	if team = strings.TrimSpace(team); team == "" {
		team = models.DefaultTeam
	}
	if role == "" {
		role = models.RoleOperator
	}

	return &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Team:         team,
		Role:         role,
		IsActive:     true,
	}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Validation("password could not be hashed: %v", err)
	}
	return string(hash), nil
}
