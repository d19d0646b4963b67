package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"screw-inspection/domain/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func seedEngine(t *testing.T, db *gorm.DB, name string, active bool) *models.InferenceEngine {
	t.Helper()
	engine := &models.InferenceEngine{
		Kind:         models.EngineYOLOv8,
		Version:      "1.0",
		ArtifactName: name,
		SizeBytes:    1024,
		Active:       active,
	}
	require.NoError(t, db.Create(engine).Error)
	return engine
}

func seedUser(t *testing.T, db *gorm.DB, username, team string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@plant.local",
		PasswordHash: "x",
		Team:         team,
		Role:         models.RoleOperator,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedACModel(t *testing.T, db *gorm.DB, name string, engine *models.InferenceEngine) *models.ACModel {
	t.Helper()
	model := &models.ACModel{
		Name:                name,
		TargetCount:         24,
		ConfidenceThreshold: 0.5,
		CycleTimeSeconds:    20,
		EngineID:            engine.ID,
		Active:              true,
	}
	require.NoError(t, db.Create(model).Error)
	return model
}
