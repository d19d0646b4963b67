package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/pkg/apperrors"
)

type InspectionRepositoryImpl struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) repositories.InspectionRepository {
	return &InspectionRepositoryImpl{db: db}
}

func (r *InspectionRepositoryImpl) Create(ctx context.Context, record *models.InspectionRecord) error {
	err := conn(ctx, r.db).Omit("ACModel", "User", "Engine").Create(record).Error
	return apperrors.Storage("create inspection record", err)
}

func (r *InspectionRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.InspectionRecord, error) {
	var record models.InspectionRecord
	err := conn(ctx, r.db).Preload("ACModel").Preload("User").Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, notFound(err, "inspection record")
	}
	return &record, nil
}

func applyFilter(query *gorm.DB, filter repositories.InspectionFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("inspection_records.user_id = ?", *filter.UserID)
	}
	if filter.Team != "" {
		query = query.Where("inspection_records.team = ?", filter.Team)
	}
	if filter.Status != "" {
		query = query.Where("inspection_records.status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("inspection_records.created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("inspection_records.created_at < ?", filter.To.UTC())
	}
	return query
}

func (r *InspectionRepositoryImpl) List(ctx context.Context, filter repositories.InspectionFilter, offset, limit int) ([]models.InspectionRecord, int64, error) {
	var records []models.InspectionRecord
	var total int64

	query := applyFilter(conn(ctx, r.db).Model(&models.InspectionRecord{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage("count inspection records", err)
	}

	err := query.
		Preload("ACModel").
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error

	return records, total, apperrors.Storage("list inspection records", err)
}

func (r *InspectionRepositoryImpl) ListAll(ctx context.Context, filter repositories.InspectionFilter, max int) ([]models.InspectionRecord, error) {
	var records []models.InspectionRecord
	err := applyFilter(conn(ctx, r.db).Model(&models.InspectionRecord{}), filter).
		Preload("ACModel").
		Preload("User").
		Order("created_at DESC").
		Limit(max).
		Find(&records).Error
	return records, apperrors.Storage("export inspection records", err)
}

const summaryColumns = `COUNT(*) AS total,
	COALESCE(SUM(CASE WHEN inspection_records.status = 'PASS' THEN 1 ELSE 0 END), 0) AS passed,
	COALESCE(SUM(CASE WHEN inspection_records.status = 'FAIL' THEN 1 ELSE 0 END), 0) AS failed,
	COALESCE(SUM(CASE WHEN inspection_records.status = 'PENDING' THEN 1 ELSE 0 END), 0) AS pending,
	COALESCE(AVG(inspection_records.confidence), 0) AS avg_confidence,
	COALESCE(AVG(inspection_records.inference_duration_ms), 0) AS avg_inference_ms`

func (r *InspectionRepositoryImpl) Summary(ctx context.Context, filter repositories.InspectionFilter) (*repositories.StatusSummary, error) {
	var summary repositories.StatusSummary
	err := applyFilter(conn(ctx, r.db).Model(&models.InspectionRecord{}), filter).
		Select(summaryColumns).
		Scan(&summary).Error
	if err != nil {
		return nil, apperrors.Storage("summarize inspection records", err)
	}
	return &summary, nil
}

func (r *InspectionRepositoryImpl) SummaryByUser(ctx context.Context, filter repositories.InspectionFilter) ([]repositories.UserStatusSummary, error) {
	var rows []repositories.UserStatusSummary
	err := applyFilter(conn(ctx, r.db).Model(&models.InspectionRecord{}), filter).
		Select(`inspection_records.user_id AS user_id, users.username AS username,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN inspection_records.status = 'PASS' THEN 1 ELSE 0 END), 0) AS passed,
			COALESCE(AVG(inspection_records.confidence), 0) AS avg_confidence`).
		Joins("JOIN users ON users.id = inspection_records.user_id").
		Group("inspection_records.user_id, users.username").
		Order("total DESC").
		Scan(&rows).Error
	return rows, apperrors.Storage("summarize inspection records by user", err)
}

func (r *InspectionRepositoryImpl) StatusPoints(ctx context.Context, filter repositories.InspectionFilter) ([]repositories.StatusPoint, error) {
	var points []repositories.StatusPoint
	err := applyFilter(conn(ctx, r.db).Model(&models.InspectionRecord{}), filter).
		Select("inspection_records.status AS status, inspection_records.created_at AS created_at").
		Order("created_at ASC").
		Scan(&points).Error
	return points, apperrors.Storage("load inspection status points", err)
}
