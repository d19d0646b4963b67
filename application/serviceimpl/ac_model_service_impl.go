package serviceimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
)

type ACModelServiceImpl struct {
	acModels    repositories.ACModelRepository
	engines     repositories.InferenceEngineRepository
	tx          repositories.Transactor
	audit       services.AuditService
	resolver    services.ConfigResolver
	invalidator services.InvalidationPublisher
}

func NewACModelService(
	acModels repositories.ACModelRepository,
	engines repositories.InferenceEngineRepository,
	tx repositories.Transactor,
	audit services.AuditService,
	resolver services.ConfigResolver,
	invalidator services.InvalidationPublisher,
) services.ACModelService {
	return &ACModelServiceImpl{
		acModels:    acModels,
		engines:     engines,
		tx:          tx,
		audit:       audit,
		resolver:    resolver,
		invalidator: invalidator,
	}
}

func (s *ACModelServiceImpl) List(ctx context.Context, includeInactive bool) ([]models.ACModel, error) {
	return s.acModels.List(ctx, includeInactive)
}

func (s *ACModelServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.ACModel, error) {
	return s.acModels.GetByID(ctx, id)
}

func (s *ACModelServiceImpl) Create(ctx context.Context, actor services.Actor, req *dto.CreateACModelRequest) (*models.ACModel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	engineID, err := uuid.Parse(req.EngineID)
	if err != nil {
		return nil, apperrors.Validation("engine_id must be a UUID")
	}

	model := &models.ACModel{
		Name:                name,
		Description:         req.Description,
		TargetCount:         intOr(req.TargetCount, models.DefaultTargetCount),
		ConfidenceThreshold: floatOr(req.ConfidenceThreshold, models.DefaultConfidenceThreshold),
		CycleTimeSeconds:    intOr(req.CycleTimeSeconds, models.DefaultCycleTimeSeconds),
		EngineID:            engineID,
		Active:              true,
		CreatedByID:         actor.ActorRef(),
	}
	if err := validateACModel(model); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.acModels.ExistsByName(ctx, name, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict("AC model %q already exists", name)
		}
		engine, err := s.engines.GetByID(ctx, engineID)
		if err != nil {
			return err
		}
		if err := s.acModels.Create(ctx, model); err != nil {
			return err
		}
		model.Engine = engine
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditCreate,
			Table:       "ac_models",
			RecordID:    model.ID.String(),
			Description: fmt.Sprintf("Created AC model %s", model.Name),
			After:       dto.ACModelToResponse(model),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(logger.CategoryInspection, "ac_model_created", "AC model created", map[string]interface{}{
		"model_id": model.ID.String(),
		"name":     model.Name,
	})
	return model, nil
}

func (s *ACModelServiceImpl) Update(ctx context.Context, actor services.Actor, id uuid.UUID, req *dto.UpdateACModelRequest) (*models.ACModel, error) {
	var model *models.ACModel
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		model, err = s.acModels.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before := dto.ACModelToResponse(model)

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperrors.Validation("name must not be empty")
			}
			exists, err := s.acModels.ExistsByName(ctx, name, id)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.Conflict("AC model %q already exists", name)
			}
			model.Name = name
		}
		if req.Description != nil {
			model.Description = *req.Description
		}
		if req.TargetCount != nil {
			model.TargetCount = *req.TargetCount
		}
		if req.ConfidenceThreshold != nil {
			model.ConfidenceThreshold = *req.ConfidenceThreshold
		}
		if req.CycleTimeSeconds != nil {
			model.CycleTimeSeconds = *req.CycleTimeSeconds
		}
		if req.EngineID != nil {
			engineID, err := uuid.Parse(*req.EngineID)
			if err != nil {
				return apperrors.Validation("engine_id must be a UUID")
			}
			engine, err := s.engines.GetByID(ctx, engineID)
			if err != nil {
				return err
			}
			model.EngineID = engineID
			model.Engine = engine
		}
		if req.Active != nil {
			model.Active = *req.Active
		}
		if err := validateACModel(model); err != nil {
			return err
		}

		if err := s.acModels.Update(ctx, model); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditUpdate,
			Table:       "ac_models",
			RecordID:    id.String(),
			Description: fmt.Sprintf("Updated AC model %s", model.Name),
			Before:      before,
			After:       dto.ACModelToResponse(model),
		})
	})
	if err != nil {
		return nil, err
	}

	s.afterConfigChange(ctx)
	return model, nil
}

// Delete clears the active flag. Inspection records keep referencing the row.
func (s *ACModelServiceImpl) Delete(ctx context.Context, actor services.Actor, id uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		model, err := s.acModels.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !model.Active {
			return nil
		}
		before := dto.ACModelToResponse(model)
		model.Active = false
		if err := s.acModels.Update(ctx, model); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditDeactivate,
			Table:       "ac_models",
			RecordID:    id.String(),
			Description: fmt.Sprintf("Deactivated AC model %s", model.Name),
			Before:      before,
			After:       dto.ACModelToResponse(model),
		})
	})
	if err != nil {
		return err
	}

	s.afterConfigChange(ctx)
	return nil
}

func (s *ACModelServiceImpl) afterConfigChange(ctx context.Context) {
	invalidateConfig(ctx, s.resolver, s.invalidator)
}

func invalidateConfig(ctx context.Context, resolver services.ConfigResolver, invalidator services.InvalidationPublisher) {
	resolver.Invalidate()
	if invalidator == nil {
		return
	}
	if err := invalidator.Publish(ctx, services.TopicConfig); err != nil {
		logger.Error(logger.CategoryInspection, "invalidation_publish_failed", "Failed to notify peers of config change", err, nil)
	}
}

func validateACModel(m *models.ACModel) error {
	switch {
	case m.TargetCount < 1:
		return apperrors.Validation("target_count must be at least 1")
	case m.ConfidenceThreshold <= 0 || m.ConfidenceThreshold > 1:
		return apperrors.Validation("confidence_threshold must be in (0, 1]")
	case m.CycleTimeSeconds < 1 || m.CycleTimeSeconds > 3600:
		return apperrors.Validation("cycle_time_seconds must be between 1 and 3600")
	}
	return nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
