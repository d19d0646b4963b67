package serviceimpl

import (
	"context"
	"time"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
)

const DefaultStatsDays = 7

type DashboardServiceImpl struct {
	records repositories.InspectionRepository
	now     func() time.Time
}

func NewDashboardService(records repositories.InspectionRepository) services.DashboardService {
	return &DashboardServiceImpl{records: records, now: time.Now}
}

func (s *DashboardServiceImpl) window(team string, days int) (repositories.InspectionFilter, int, error) {
	days, err := windowDays(days, DefaultStatsDays)
	if err != nil {
		return repositories.InspectionFilter{}, 0, err
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))
	return repositories.InspectionFilter{Team: team, From: &from}, days, nil
}

func (s *DashboardServiceImpl) Overview(ctx context.Context, team string, days int) (*dto.OverviewResponse, error) {
	filter, days, err := s.window(team, days)
	if err != nil {
		return nil, err
	}
	summary, err := s.records.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.OverviewResponse{
		Team: team,
		Days: days,
		Summary: dto.StatusSummary{
			Total:          summary.Total,
			Passed:         summary.Passed,
			Failed:         summary.Failed,
			Pending:        summary.Pending,
			PassRate:       dto.PassRatePercent(summary.Passed, summary.Total),
			AvgConfidence:  summary.AvgConfidence,
			AvgInferenceMs: summary.AvgInferenceMs,
		},
	}, nil
}

// TeamStats buckets records per UTC day. Days without records are present
// with zero counts.
func (s *DashboardServiceImpl) TeamStats(ctx context.Context, team string, days int) (*dto.TeamStatsResponse, error) {
	filter, days, err := s.window(team, days)
	if err != nil {
		return nil, err
	}
	points, err := s.records.StatusPoints(ctx, filter)
	if err != nil {
		return nil, err
	}

	daily := make([]dto.DailyStats, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := filter.From.AddDate(0, 0, i).Format("2006-01-02")
		daily[i] = dto.DailyStats{Date: date}
		index[date] = i
	}

	for _, p := range points {
		i, ok := index[p.CreatedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		daily[i].Total++
		switch p.Status {
		case models.InspectionPass:
			daily[i].Passed++
		case models.InspectionFail:
			daily[i].Failed++
		case models.InspectionPending:
			daily[i].Pending++
		}
	}

	return &dto.TeamStatsResponse{Team: team, Daily: daily}, nil
}

func (s *DashboardServiceImpl) UserPerformance(ctx context.Context, team string, days int) (*dto.UserPerformanceResponse, error) {
	filter, _, err := s.window(team, days)
	if err != nil {
		return nil, err
	}
	rows, err := s.records.SummaryByUser(ctx, filter)
	if err != nil {
		return nil, err
	}

	users := make([]dto.UserPerformance, 0, len(rows))
	for _, r := range rows {
		users = append(users, dto.UserPerformance{
			UserID:        r.UserID,
			Username:      r.Username,
			Total:         r.Total,
			Passed:        r.Passed,
			PassRate:      dto.PassRatePercent(r.Passed, r.Total),
			AvgConfidence: r.AvgConfidence,
		})
	}
	return &dto.UserPerformanceResponse{Team: team, Users: users}, nil
}
