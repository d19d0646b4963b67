package postgres

import (
	"context"

	"gorm.io/gorm"

	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/pkg/apperrors"
)

type AuditLogRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) repositories.AuditLogRepository {
	return &AuditLogRepositoryImpl{db: db}
}

func (r *AuditLogRepositoryImpl) Create(ctx context.Context, log *models.AuditLog) error {
	return apperrors.Storage("create audit log", conn(ctx, r.db).Create(log).Error)
}

func (r *AuditLogRepositoryImpl) List(ctx context.Context, filter repositories.AuditLogFilter, offset, limit int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	query := conn(ctx, r.db).Model(&models.AuditLog{})
	if filter.AffectedTable != "" {
		query = query.Where("affected_table = ?", filter.AffectedTable)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.RecordID != "" {
		query = query.Where("record_id = ?", filter.RecordID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage("count audit logs", err)
	}

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error

	return logs, total, apperrors.Storage("list audit logs", err)
}
