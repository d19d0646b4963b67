package services

import (
	"context"

	"screw-inspection/domain/dto"
)

type DashboardService interface {
	Overview(ctx context.Context, team string, days int) (*dto.OverviewResponse, error)
	TeamStats(ctx context.Context, team string, days int) (*dto.TeamStatsResponse, error)
	UserPerformance(ctx context.Context, team string, days int) (*dto.UserPerformanceResponse, error)
}
