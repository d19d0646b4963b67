package serviceimpl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/metrics"
)

const (
	DefaultHistoryDays = 30
	MaxExportRows      = 10000

	// MaxWindowDays bounds every days= window on history and dashboards
	MaxWindowDays = 366
)

type InspectionServiceImpl struct {
	records    repositories.InspectionRepository
	acModels   repositories.ACModelRepository
	engines    repositories.InferenceEngineRepository
	users      repositories.UserRepository
	publishers []services.InspectionPublisher
	metrics    *metrics.InspectionMetrics
	now        func() time.Time
}

func NewInspectionService(
	records repositories.InspectionRepository,
	acModels repositories.ACModelRepository,
	engines repositories.InferenceEngineRepository,
	users repositories.UserRepository,
	m *metrics.InspectionMetrics,
	publishers ...services.InspectionPublisher,
) *InspectionServiceImpl {
	return &InspectionServiceImpl{
		records:    records,
		acModels:   acModels,
		engines:    engines,
		users:      users,
		publishers: publishers,
		metrics:    m,
		now:        time.Now,
	}
}

// Save persists one consolidated cycle. Delta, user and team are always
// derived here, never taken from the client.
func (s *InspectionServiceImpl) Save(ctx context.Context, actor services.Actor, in services.SaveInspectionInput) (*models.InspectionRecord, error) {
	status, ok := models.ParseInspectionStatus(in.Status)
	if !ok {
		return nil, apperrors.Validation("status must be one of PASS, FAIL, PENDING")
	}
	if in.DetectedCount < 0 || in.ExpectedCount < 0 {
		return nil, apperrors.Validation("counts must not be negative")
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return nil, apperrors.Validation("confidence must be between 0 and 1")
	}
	if in.InferenceDurationMs < 0 {
		return nil, apperrors.Validation("inference_duration_ms must not be negative")
	}
	if actor.ID == uuid.Nil {
		return nil, apperrors.ErrUnauthorized
	}

	model, err := s.acModels.GetActiveByName(ctx, strings.TrimSpace(in.ModelName))
	if err != nil {
		return nil, err
	}

	team, err := s.sessionTeam(ctx, actor)
	if err != nil {
		return nil, err
	}

	engineID := model.EngineID
	active, err := s.engines.GetActive(ctx)
	switch {
	case err == nil:
		engineID = active.ID
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	record := &models.InspectionRecord{
		ACModelID:           model.ID,
		UserID:              actor.ID,
		Team:                team,
		EngineID:            engineID,
		Status:              status,
		Confidence:          in.Confidence,
		DetectedCount:       in.DetectedCount,
		ExpectedCount:       in.ExpectedCount,
		Delta:               in.ExpectedCount - in.DetectedCount,
		ImageReference:      strings.TrimSpace(in.ImageReference),
		InferenceDurationMs: in.InferenceDurationMs,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	s.metrics.RecordInspection(string(status), model.Name, record.Delta)
	logger.Inspection("inspection_saved", "Inspection recorded", map[string]interface{}{
		"record_id": record.ID.String(),
		"model":     model.Name,
		"status":    status,
		"delta":     record.Delta,
		"team":      team,
		"user_id":   actor.ID.String(),
	})

	event := dto.InspectionToEvent(record, model.Name, actor.Username)
	for _, p := range s.publishers {
		p.PublishInspection(ctx, event)
	}
	return record, nil
}

// sessionTeam prefers the team in the session token and falls back to the
// user row for tokens issued without one.
func (s *InspectionServiceImpl) sessionTeam(ctx context.Context, actor services.Actor) (string, error) {
	if team := strings.TrimSpace(actor.Team); team != "" {
		return team, nil
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return "", err
	}
	if user.Team == "" {
		return models.DefaultTeam, nil
	}
	return user.Team, nil
}

func (s *InspectionServiceImpl) ListForUser(ctx context.Context, actor services.Actor, q services.InspectionQuery) ([]models.InspectionRecord, int64, error) {
	filter, err := s.filter(q)
	if err != nil {
		return nil, 0, err
	}
	userID := actor.ID
	filter.UserID = &userID

	_, limit, offset := dto.NormalizePage(q.Page, q.Limit)
	return s.records.List(ctx, filter, offset, limit)
}

func (s *InspectionServiceImpl) ListForTeam(ctx context.Context, actor services.Actor, q services.InspectionQuery) ([]models.InspectionRecord, int64, error) {
	filter, err := s.filter(q)
	if err != nil {
		return nil, 0, err
	}
	filter.Team = actor.VisibleTeam(q.Team)

	_, limit, offset := dto.NormalizePage(q.Page, q.Limit)
	return s.records.List(ctx, filter, offset, limit)
}

func (s *InspectionServiceImpl) Export(ctx context.Context, actor services.Actor, q services.InspectionQuery) ([]models.InspectionRecord, error) {
	filter, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	filter.Team = actor.VisibleTeam(q.Team)
	if !actor.IsAdmin() && actor.Role == models.RoleOperator {
		userID := actor.ID
		filter.UserID = &userID
	}
	return s.records.ListAll(ctx, filter, MaxExportRows)
}

func (s *InspectionServiceImpl) filter(q services.InspectionQuery) (repositories.InspectionFilter, error) {
	var filter repositories.InspectionFilter
	if q.Status != "" {
		status, ok := models.ParseInspectionStatus(q.Status)
		if !ok {
			return filter, apperrors.Validation("unknown status %q", q.Status)
		}
		filter.Status = status
	}
	days, err := windowDays(q.Days, DefaultHistoryDays)
	if err != nil {
		return filter, err
	}
	from := s.now().UTC().AddDate(0, 0, -days)
	filter.From = &from
	return filter, nil
}

// windowDays applies def to an unset window and rejects anything outside
// 1..MaxWindowDays.
func windowDays(days, def int) (int, error) {
	if days == 0 {
		return def, nil
	}
	if days < 0 || days > MaxWindowDays {
		return 0, apperrors.Validation("days must be between 1 and %d", MaxWindowDays)
	}
	return days, nil
}
