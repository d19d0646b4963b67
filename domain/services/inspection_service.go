package services

import (
	"context"

	"screw-inspection/domain/models"
)

type SaveInspectionInput struct {
	ModelName           string
	Status              string
	DetectedCount       int
	ExpectedCount       int
	Confidence          float64
	InferenceDurationMs float64
	ImageReference      string
}

type InspectionQuery struct {
	Team   string
	Status string
	Days   int
	Page   int
	Limit  int
}

// InspectionService consolidates client cycles into append-only records and
// serves the history views.
type InspectionService interface {
	Save(ctx context.Context, actor Actor, in SaveInspectionInput) (*models.InspectionRecord, error)
	ListForUser(ctx context.Context, actor Actor, q InspectionQuery) ([]models.InspectionRecord, int64, error)
	ListForTeam(ctx context.Context, actor Actor, q InspectionQuery) ([]models.InspectionRecord, int64, error)
	Export(ctx context.Context, actor Actor, q InspectionQuery) ([]models.InspectionRecord, error)
}
