package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/models"
)

func TestGenerateAndValidateToken(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Username: "op1",
		Email:    "op1@plant.local",
		Role:     models.RoleOperator,
		Team:     "Line A",
	}

	token, expiresAt, err := GenerateToken(user, "secret", time.Hour, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	ctx, err := ValidateTokenStringToUUID("Bearer "+token, "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, ctx.ID)
	assert.Equal(t, "Line A", ctx.Team)
	assert.Equal(t, models.RoleOperator, ctx.Role)
}

func TestValidateToken_Errors(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "op1"}

	expired, _, err := GenerateToken(user, "secret", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ValidateTokenStringToUUID(expired, "secret")
	assert.ErrorIs(t, err, ErrExpiredToken)

	valid, _, err := GenerateToken(user, "secret", time.Hour, time.Now())
	require.NoError(t, err)
	_, err = ValidateTokenStringToUUID(valid, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateTokenStringToUUID("", "secret")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}
