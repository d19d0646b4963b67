package repositories

import (
	"context"

	"github.com/google/uuid"

	"screw-inspection/domain/models"
)

type AuditLogFilter struct {
	AffectedTable string
	Action        models.AuditAction
	ActorID       *uuid.UUID
	RecordID      string
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter, offset, limit int) ([]models.AuditLog, int64, error)
}
