package serviceimpl

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/vision"
)

// Upload, activate, configure, detect and record one failed cycle.
func TestInspectionFlow_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))
	operator := actorFor(env.seedUser(t, "op1", "Line A", models.RoleOperator))

	engine, err := env.engineSvc.Register(ctx, admin, services.RegisterEngineInput{
		Kind:     "yolov8",
		Version:  "1.0",
		FileName: "screws.pt",
		Size:     -1,
		Content:  strings.NewReader("weights"),
	})
	require.NoError(t, err)
	assert.False(t, engine.Active)

	engine, err = env.engineSvc.Activate(ctx, admin, engine.ID)
	require.NoError(t, err)
	assert.True(t, engine.Active)

	model, err := env.acModelSvc.Create(ctx, admin, &dto.CreateACModelRequest{
		Name:        "UnitX",
		TargetCount: intPtr(24),
		EngineID:    engine.ID.String(),
	})
	require.NoError(t, err)

	id := model.ID.String()
	_, _, err = env.settingsSvc.Update(ctx, admin, &dto.UpdateSettingsRequest{ActiveModelID: &id})
	require.NoError(t, err)

	cfg, err := env.resolver.ResolveActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.TargetCount)
	assert.Equal(t, "UnitX", cfg.ModelName)

	detection := NewDetectionService(env.handle, vision.NewDecoder(), testParams, 1<<20, nil)
	frame, err := detection.Detect(ctx, pngFrame(t, 64, 48))
	require.NoError(t, err)
	assert.Equal(t, engine.ID, frame.EngineID)

	record, err := env.inspections.Save(ctx, operator, services.SaveInspectionInput{
		ModelName:     "UnitX",
		DetectedCount: 20,
		ExpectedCount: 24,
		Status:        "FAIL",
		Confidence:    0.77,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, record.Delta)
	assert.Equal(t, "Line A", record.Team)
	assert.Equal(t, engine.ID, record.EngineID)
}

func intPtr(v int) *int { return &v }
