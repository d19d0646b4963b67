package services

import (
	"context"

	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
)

// AuditEntry is serialized into an AuditLog row. Before and After are
// marshalled to JSON; nil means no snapshot.
type AuditEntry struct {
	Action      models.AuditAction
	Table       string
	RecordID    string
	Description string
	Before      any
	After       any
}

type AuditService interface {
	// Record joins the transaction carried by ctx, if any
	Record(ctx context.Context, actor Actor, entry AuditEntry) error
	List(ctx context.Context, filter repositories.AuditLogFilter, page, limit int) ([]models.AuditLog, int64, error)
}
