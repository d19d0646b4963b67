package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"screw-inspection/domain/models"
)

func TestPassRatePercent(t *testing.T) {
	assert.Equal(t, 0.0, PassRatePercent(0, 0))
	assert.Equal(t, 0.0, PassRatePercent(5, 0))
	assert.Equal(t, 100.0, PassRatePercent(3, 3))
	assert.Equal(t, 66.67, PassRatePercent(2, 3))
}

func TestNormalizePage(t *testing.T) {
	page, limit, offset := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, limit)
	assert.Equal(t, 0, offset)

	page, limit, offset = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, limit)
	assert.Equal(t, 200, offset)

	assert.Equal(t, 3, NewPaginationMeta(41, 1, 20).TotalPages)
	assert.Equal(t, 0, NewPaginationMeta(0, 1, 20).TotalPages)
}

func TestAuditLogToResponseDecodesSnapshots(t *testing.T) {
	resp := AuditLogToResponse(&models.AuditLog{
		Action: models.AuditActivate,
		Before: datatypes.JSON(`{"active":false}`),
		After:  datatypes.JSON(`{"active":true}`),
	})
	assert.Equal(t, "ACTIVATE", resp.Action)
	assert.Equal(t, map[string]any{"active": false}, resp.Before)
	assert.Equal(t, map[string]any{"active": true}, resp.After)
}

func TestEngineToResponseSize(t *testing.T) {
	resp := EngineToResponse(&models.InferenceEngine{Kind: models.EngineYOLOv8, SizeBytes: 3 << 20})
	assert.Equal(t, 3.0, resp.SizeMB)
	assert.Nil(t, EngineToResponse(nil))
}
