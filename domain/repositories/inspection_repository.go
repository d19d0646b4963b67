package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"screw-inspection/domain/models"
)

// InspectionFilter narrows read-side queries. Zero values mean no filter.
type InspectionFilter struct {
	UserID *uuid.UUID
	Team   string
	Status models.InspectionStatus
	From   *time.Time
	To     *time.Time
}

type StatusSummary struct {
	Total          int64
	Passed         int64
	Failed         int64
	Pending        int64
	AvgConfidence  float64
	AvgInferenceMs float64
}

type UserStatusSummary struct {
	UserID        uuid.UUID
	Username      string
	Total         int64
	Passed        int64
	AvgConfidence float64
}

// StatusPoint is the minimal projection used for time bucketing
type StatusPoint struct {
	Status    models.InspectionStatus
	CreatedAt time.Time
}

// InspectionRepository has no update or delete: records are append-only.
type InspectionRepository interface {
	Create(ctx context.Context, record *models.InspectionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InspectionRecord, error)
	List(ctx context.Context, filter InspectionFilter, offset, limit int) ([]models.InspectionRecord, int64, error)
	ListAll(ctx context.Context, filter InspectionFilter, max int) ([]models.InspectionRecord, error)
	Summary(ctx context.Context, filter InspectionFilter) (*StatusSummary, error)
	SummaryByUser(ctx context.Context, filter InspectionFilter) ([]UserStatusSummary, error)
	StatusPoints(ctx context.Context, filter InspectionFilter) ([]StatusPoint, error)
}
