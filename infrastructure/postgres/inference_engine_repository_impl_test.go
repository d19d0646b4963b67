package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/models"
	"screw-inspection/pkg/apperrors"
)

func TestEngineActivationWithinTransaction(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInferenceEngineRepository(db)
	tx := NewTransactionManager(db)
	ctx := context.Background()

	a := seedEngine(t, db, "yolov8_v1.0_a.pt", true)
	b := seedEngine(t, db, "yolov8_v1.0_b.pt", false)

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := repo.DeactivateAll(ctx, b.ID); err != nil {
			return err
		}
		return repo.SetActive(ctx, b.ID, true)
	})
	require.NoError(t, err)

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, active.ID)

	reloaded, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Active)
}

func TestSecondActiveEngineViolatesIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInferenceEngineRepository(db)
	ctx := context.Background()

	seedEngine(t, db, "yolov8_v1.0_a.pt", true)
	b := seedEngine(t, db, "yolov8_v1.0_b.pt", false)

	err := repo.SetActive(ctx, b.ID, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInferenceEngineRepository(db)
	tx := NewTransactionManager(db)
	ctx := context.Background()

	a := seedEngine(t, db, "yolov8_v1.0_a.pt", true)
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.DeactivateAll(ctx, uuid.Nil))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, active.ID)
}

func TestGetActiveWithoutEngine(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInferenceEngineRepository(db)

	_, err := repo.GetActive(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEngineReferenceCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInferenceEngineRepository(db)
	ctx := context.Background()

	engine := seedEngine(t, db, "yolov8_v1.0_a.pt", false)
	model := seedACModel(t, db, "UnitX", engine)
	user := seedUser(t, db, "op1", "Line A")

	n, err := repo.CountACModelRefs(ctx, engine.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, db.Create(&models.InspectionRecord{
		ACModelID: model.ID, UserID: user.ID, Team: "Line A", EngineID: engine.ID,
		Status: models.InspectionPass, ExpectedCount: 24, DetectedCount: 24,
	}).Error)
	n, err = repo.CountInspectionRefs(ctx, engine.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteUnknownEngine(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInferenceEngineRepository(db)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListArtifactNames(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInferenceEngineRepository(db)

	seedEngine(t, db, "a.pt", false)
	seedEngine(t, db, "b.pt", false)

	names, err := repo.ListArtifactNames(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.pt", "b.pt"}, names)
}
