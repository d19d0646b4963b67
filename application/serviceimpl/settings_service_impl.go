package serviceimpl

import (
	"context"

	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
)

type SettingsServiceImpl struct {
	settings    repositories.SettingsRepository
	acModels    repositories.ACModelRepository
	tx          repositories.Transactor
	audit       services.AuditService
	resolver    services.ConfigResolver
	invalidator services.InvalidationPublisher
}

func NewSettingsService(
	settings repositories.SettingsRepository,
	acModels repositories.ACModelRepository,
	tx repositories.Transactor,
	audit services.AuditService,
	resolver services.ConfigResolver,
	invalidator services.InvalidationPublisher,
) services.SettingsService {
	return &SettingsServiceImpl{
		settings:    settings,
		acModels:    acModels,
		tx:          tx,
		audit:       audit,
		resolver:    resolver,
		invalidator: invalidator,
	}
}

func (s *SettingsServiceImpl) Get(ctx context.Context) (*models.GlobalSettings, *models.ACModel, error) {
	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return nil, nil, err
	}
	return settings, s.selectedModel(ctx, settings), nil
}

// selectedModel tolerates a dangling active_model_id; the resolver reports
// that state as unconfigured.
func (s *SettingsServiceImpl) selectedModel(ctx context.Context, settings *models.GlobalSettings) *models.ACModel {
	if settings.ActiveModelID == nil {
		return nil
	}
	model, err := s.acModels.GetByID(ctx, *settings.ActiveModelID)
	if err != nil {
		return nil
	}
	return model
}

func (s *SettingsServiceImpl) Update(ctx context.Context, actor services.Actor, req *dto.UpdateSettingsRequest) (*models.GlobalSettings, *models.ACModel, error) {
	var (
		settings *models.GlobalSettings
		selected *models.ACModel
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		settings, err = s.settings.GetOrCreate(ctx)
		if err != nil {
			return err
		}
		before := dto.SettingsToResponse(settings, nil)

		switch {
		case req.ClearActiveModel:
			settings.ActiveModelID = nil
		case req.ActiveModelID != nil:
			id, err := uuid.Parse(*req.ActiveModelID)
			if err != nil {
				return apperrors.Validation("active_model_id must be a UUID")
			}
			selected, err = s.acModels.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !selected.Active {
				return apperrors.Validation("AC model %s is deactivated", selected.Name)
			}
			settings.ActiveModelID = &id
		default:
			selected = s.selectedModel(ctx, settings)
		}

		if req.AllowPublicRegistration != nil {
			settings.AllowPublicRegistration = *req.AllowPublicRegistration
		}
		settings.UpdatedByID = actor.ActorRef()

		if err := s.settings.Update(ctx, settings); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditUpdate,
			Table:       "global_settings",
			RecordID:    "1",
			Description: "Updated global settings",
			Before:      before,
			After:       dto.SettingsToResponse(settings, nil),
		})
	})
	if err != nil {
		return nil, nil, err
	}

	invalidateConfig(ctx, s.resolver, s.invalidator)
	logger.Info(logger.CategoryInspection, "settings_updated", "Global settings updated", map[string]interface{}{
		"actor":           actor.Username,
		"active_model_id": settings.ActiveModelID,
	})
	return settings, selected, nil
}
