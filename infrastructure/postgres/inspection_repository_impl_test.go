package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
)

func seedInspections(t *testing.T) (*InspectionRepositoryImpl, *models.User, *models.User) {
	t.Helper()
	db := setupTestDB(t)
	repo := NewInspectionRepository(db).(*InspectionRepositoryImpl)

	engine := seedEngine(t, db, "yolov8_v1.0_a.pt", true)
	model := seedACModel(t, db, "UnitX", engine)
	alice := seedUser(t, db, "alice", "Line A")
	bob := seedUser(t, db, "bob", "Line B")

	records := []struct {
		user   *models.User
		status models.InspectionStatus
		conf   float64
		ms     float64
	}{
		{alice, models.InspectionPass, 0.9, 40},
		{alice, models.InspectionFail, 0.7, 60},
		{alice, models.InspectionPending, 0.5, 20},
		{bob, models.InspectionPass, 0.8, 30},
	}
	for _, rec := range records {
		require.NoError(t, repo.Create(context.Background(), &models.InspectionRecord{
			ACModelID:           model.ID,
			UserID:              rec.user.ID,
			Team:                rec.user.Team,
			EngineID:            engine.ID,
			Status:              rec.status,
			Confidence:          rec.conf,
			DetectedCount:       24,
			ExpectedCount:       24,
			InferenceDurationMs: rec.ms,
		}))
	}
	return repo, alice, bob
}

func TestInspectionSummaryByTeam(t *testing.T) {
	repo, _, _ := seedInspections(t)

	summary, err := repo.Summary(context.Background(), repositories.InspectionFilter{Team: "Line A"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, int64(1), summary.Passed)
	assert.Equal(t, int64(1), summary.Failed)
	assert.Equal(t, int64(1), summary.Pending)
	assert.InDelta(t, 0.7, summary.AvgConfidence, 1e-9)
	assert.InDelta(t, 40, summary.AvgInferenceMs, 1e-9)
}

func TestInspectionSummaryEmpty(t *testing.T) {
	repo, _, _ := seedInspections(t)

	summary, err := repo.Summary(context.Background(), repositories.InspectionFilter{Team: "Nobody"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Total)
	assert.Equal(t, 0.0, summary.AvgConfidence)
}

func TestInspectionListFiltersAndPreloads(t *testing.T) {
	repo, alice, _ := seedInspections(t)

	records, total, err := repo.List(context.Background(), repositories.InspectionFilter{
		UserID: &alice.ID,
		Status: models.InspectionPass,
	}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ACModel)
	assert.Equal(t, "UnitX", records[0].ACModel.Name)
	assert.Equal(t, "alice", records[0].User.Username)
}

func TestInspectionDateRange(t *testing.T) {
	repo, _, _ := seedInspections(t)

	future := time.Now().Add(time.Hour)
	_, total, err := repo.List(context.Background(), repositories.InspectionFilter{From: &future}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	past := time.Now().Add(-time.Hour)
	points, err := repo.StatusPoints(context.Background(), repositories.InspectionFilter{From: &past})
	require.NoError(t, err)
	assert.Len(t, points, 4)
}

func TestInspectionSummaryByUser(t *testing.T) {
	repo, _, _ := seedInspections(t)

	rows, err := repo.SummaryByUser(context.Background(), repositories.InspectionFilter{Team: "Line A"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].Username)
	assert.Equal(t, int64(3), rows[0].Total)
	assert.Equal(t, int64(1), rows[0].Passed)
}

func TestInspectionRecordsAreAppendOnly(t *testing.T) {
	repo, _, _ := seedInspections(t)
	ctx := context.Background()

	records, _, err := repo.List(ctx, repositories.InspectionFilter{}, 0, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	err = repo.db.Model(&record).Update("status", models.InspectionPass).Error
	assert.ErrorIs(t, err, models.ErrImmutableRecord)

	err = repo.db.Delete(&record).Error
	assert.ErrorIs(t, err, models.ErrImmutableRecord)
}
