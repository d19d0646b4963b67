package serviceimpl

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
)

type AuditServiceImpl struct {
	repo repositories.AuditLogRepository
}

func NewAuditService(repo repositories.AuditLogRepository) services.AuditService {
	return &AuditServiceImpl{repo: repo}
}

func (s *AuditServiceImpl) Record(ctx context.Context, actor services.Actor, entry services.AuditEntry) error {
	before, err := snapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("failed to encode audit snapshot: %w", err)
	}
	after, err := snapshot(entry.After)
	if err != nil {
		return fmt.Errorf("failed to encode audit snapshot: %w", err)
	}

	return s.repo.Create(ctx, &models.AuditLog{
		ActorID:       actor.ActorRef(),
		Action:        entry.Action,
		AffectedTable: entry.Table,
		RecordID:      entry.RecordID,
		Description:   entry.Description,
		Before:        before,
		After:         after,
		IPAddress:     actor.IP,
	})
}

func (s *AuditServiceImpl) List(ctx context.Context, filter repositories.AuditLogFilter, page, limit int) ([]models.AuditLog, int64, error) {
	_, limit, offset := dto.NormalizePage(page, limit)
	return s.repo.List(ctx, filter, offset, limit)
}

func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
