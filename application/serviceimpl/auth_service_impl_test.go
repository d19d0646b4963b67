package serviceimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/utils"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := NewAuthService(env.users, env.settings, "secret", time.Hour)

	_, err := auth.Register(ctx, &dto.RegisterRequest{Username: "op1", Email: "op1@plant.local", Password: "password1"})
	assert.ErrorIs(t, err, services.ErrRegistrationClosed)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))
	allow := true
	_, _, err = env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{AllowPublicRegistration: &allow})
	require.NoError(t, err)

	user, err := auth.Register(ctx, &dto.RegisterRequest{Username: "op1", Email: "OP1@plant.local", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOperator, user.Role)
	assert.Equal(t, models.DefaultTeam, user.Team)
	assert.Equal(t, "op1@plant.local", user.Email)
	assert.NotEqual(t, "password1", user.PasswordHash)

	_, err = auth.Register(ctx, &dto.RegisterRequest{Username: "op1", Email: "other@plant.local", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	resp, err := auth.Login(ctx, &dto.LoginRequest{Username: "op1", Password: "password1"})
	require.NoError(t, err)
	claims, err := utils.ValidateTokenStringToUUID(resp.Token, "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)
	assert.Equal(t, models.DefaultTeam, claims.Team)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	_, err = auth.Login(ctx, &dto.LoginRequest{Username: "op1", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = auth.Login(ctx, &dto.LoginRequest{Username: "ghost", Password: "password1"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_InactiveUserCannotLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := NewAuthService(env.users, env.settings, "secret", time.Hour)
	users := NewUserService(env.users, env.tx, env.audit)
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	user, err := users.Create(ctx, admin, &dto.CreateUserRequest{
		Username: "tech1", Email: "tech1@plant.local", Password: "password1", Role: "technician", Team: "Line A",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, user.Role)

	_, err = users.Deactivate(ctx, admin, user.ID)
	require.NoError(t, err)

	_, err = auth.Login(ctx, &dto.LoginRequest{Username: "tech1", Password: "password1"})
	assert.ErrorIs(t, err, services.ErrUserInactive)

	_, err = users.Deactivate(ctx, admin, admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserService_UpdateWritesAudit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := NewUserService(env.users, env.tx, env.audit)
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))
	op := env.seedUser(t, "op1", "Line A", models.RoleOperator)
	other := env.seedUser(t, "op2", "Line A", models.RoleOperator)

	team := "Line B"
	updated, err := users.Update(ctx, admin, op.ID, &dto.UpdateUserRequest{Team: &team})
	require.NoError(t, err)
	assert.Equal(t, "Line B", updated.Team)

	taken := other.Email
	_, err = users.Update(ctx, admin, op.ID, &dto.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	logs, total, err := env.audit.List(ctx, repositories.AuditLogFilter{AffectedTable: "users"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, models.AuditUpdate, logs[0].Action)
	assert.Equal(t, admin.ID, *logs[0].ActorID)
	assert.Equal(t, "127.0.0.1", logs[0].IPAddress)
	assert.Contains(t, string(logs[0].Before), "Line A")
	assert.Contains(t, string(logs[0].After), "Line B")
	assert.NotContains(t, string(logs[0].After), "password")
}
