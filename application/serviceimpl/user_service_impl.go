package serviceimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
)

type UserServiceImpl struct {
	users repositories.UserRepository
	tx    repositories.Transactor
	audit services.AuditService
}

func NewUserService(users repositories.UserRepository, tx repositories.Transactor, audit services.AuditService) services.UserService {
	return &UserServiceImpl{users: users, tx: tx, audit: audit}
}

func (s *UserServiceImpl) List(ctx context.Context, search string, page, limit int) ([]models.User, int64, error) {
	_, limit, offset := dto.NormalizePage(page, limit)
	return s.users.List(ctx, search, offset, limit)
}

func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserServiceImpl) Create(ctx context.Context, actor services.Actor, req *dto.CreateUserRequest) (*models.User, error) {
	var user *models.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = newUser(ctx, s.users, req.Username, req.Email, req.Password, req.Team, models.Role(req.Role))
		if err != nil {
			return err
		}
		if !user.Role.Valid() {
			return apperrors.Validation("unknown role %q", req.Role)
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditCreate,
			Table:       "users",
			RecordID:    user.ID.String(),
			Description: fmt.Sprintf("Created user %s", user.Username),
			After:       dto.UserToUserResponse(user),
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, actor services.Actor, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	var user *models.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before := dto.UserToUserResponse(user)

		if req.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*req.Email))
			exists, err := s.users.ExistsByUsernameOrEmail(ctx, "", email, id)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.Conflict("email already registered")
			}
			user.Email = email
		}
		if req.Team != nil {
			user.Team = strings.TrimSpace(*req.Team)
		}
		if req.Role != nil {
			role := models.Role(*req.Role)
			if !role.Valid() {
				return apperrors.Validation("unknown role %q", *req.Role)
			}
			if id == actor.ID && role != models.RoleAdmin {
				return apperrors.Validation("admins cannot demote themselves")
			}
			user.Role = role
		}
		if req.Password != nil {
			hash, err := hashPassword(*req.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		if req.IsActive != nil {
			if id == actor.ID && !*req.IsActive {
				return apperrors.Validation("admins cannot deactivate themselves")
			}
			user.IsActive = *req.IsActive
		}

		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditUpdate,
			Table:       "users",
			RecordID:    id.String(),
			Description: fmt.Sprintf("Updated user %s", user.Username),
			Before:      before,
			After:       dto.UserToUserResponse(user),
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) Deactivate(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.User, error) {
	if id == actor.ID {
		return nil, apperrors.Validation("admins cannot deactivate themselves")
	}

	var user *models.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before := dto.UserToUserResponse(user)
		user.IsActive = false
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditDeactivate,
			Table:       "users",
			RecordID:    id.String(),
			Description: fmt.Sprintf("Deactivated user %s", user.Username),
			Before:      before,
			After:       dto.UserToUserResponse(user),
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
