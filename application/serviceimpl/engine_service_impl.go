package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/storage"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
)

const maxVersionLength = 50

type EngineServiceImpl struct {
	engines     repositories.InferenceEngineRepository
	tx          repositories.Transactor
	storage     storage.ArtifactStorage
	audit       services.AuditService
	handle      services.DetectorHandle
	invalidator services.InvalidationPublisher
	maxBytes    int64
	now         func() time.Time

	// activations are serialized in-process; the partial unique index on
	// inference_engines.active guards across instances
	activateMu sync.Mutex
}

func NewEngineService(
	engines repositories.InferenceEngineRepository,
	tx repositories.Transactor,
	artifacts storage.ArtifactStorage,
	audit services.AuditService,
	handle services.DetectorHandle,
	invalidator services.InvalidationPublisher,
	maxBytes int64,
) *EngineServiceImpl {
	return &EngineServiceImpl{
		engines:     engines,
		tx:          tx,
		storage:     artifacts,
		audit:       audit,
		handle:      handle,
		invalidator: invalidator,
		maxBytes:    maxBytes,
		now:         time.Now,
	}
}

func (s *EngineServiceImpl) Register(ctx context.Context, actor services.Actor, in services.RegisterEngineInput) (*models.InferenceEngine, error) {
	kind, ok := models.ParseEngineKind(in.Kind)
	if !ok {
		return nil, apperrors.Validation("unsupported engine kind %q", in.Kind)
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	if ext != kind.ArtifactSuffix() {
		return nil, apperrors.Validation("%s artifacts must use the %s extension, got %q", kind, kind.ArtifactSuffix(), ext)
	}

	if in.Size > s.maxBytes {
		return nil, apperrors.Validation("artifact is %d bytes, limit is %d", in.Size, s.maxBytes)
	}

	version := strings.TrimSpace(in.Version)
	safeVersion := sanitizeVersion(version)
	if safeVersion == "" || len(version) > maxVersionLength {
		return nil, apperrors.Validation("version must be 1-%d characters and contain a letter or digit", maxVersionLength)
	}

	name := fmt.Sprintf("%s_v%s_%s%s", kind, safeVersion, s.now().UTC().Format("20060102_150405"), ext)

	saved, err := s.storage.Save(ctx, name, in.Content, s.maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperrors.Validation("artifact exceeds %d bytes", s.maxBytes)
		}
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrValidation) {
			return nil, err
		}
		return nil, apperrors.Storage("save artifact", err)
	}

	engine := &models.InferenceEngine{
		Kind:         kind,
		Version:      version,
		ArtifactName: saved.Name,
		SizeBytes:    saved.Size,
		SHA256:       saved.SHA256,
		Description:  strings.TrimSpace(in.Description),
		CreatedByID:  actor.ActorRef(),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.engines.Create(ctx, engine); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditUpload,
			Table:       "inference_engines",
			RecordID:    engine.ID.String(),
			Description: fmt.Sprintf("Uploaded %s engine %s", engine.Kind, engine.ArtifactName),
			After:       dto.EngineToResponse(engine),
		})
	})
	if err != nil {
		if rmErr := s.storage.Delete(saved.Name); rmErr != nil {
			logger.StorageError("artifact_cleanup_failed", "Failed to remove artifact after registry rollback", rmErr, map[string]interface{}{
				"artifact": saved.Name,
			})
		}
		return nil, err
	}

	logger.Engine("engine_registered", "Inference engine registered", map[string]interface{}{
		"engine_id": engine.ID.String(),
		"kind":      engine.Kind,
		"version":   engine.Version,
		"artifact":  engine.ArtifactName,
		"size":      engine.SizeBytes,
	})
	return engine, nil
}

func (s *EngineServiceImpl) List(ctx context.Context) ([]models.InferenceEngine, error) {
	return s.engines.List(ctx)
}

func (s *EngineServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.InferenceEngine, error) {
	return s.engines.GetByID(ctx, id)
}

// Activate runs deactivate-all and set-active in one transaction and only
// invalidates the detector cache once it has committed.
func (s *EngineServiceImpl) Activate(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.InferenceEngine, error) {
	s.activateMu.Lock()
	defer s.activateMu.Unlock()

	var engine *models.InferenceEngine
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		engine, err = s.engines.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before := dto.EngineToResponse(engine)

		if err := s.engines.DeactivateAll(ctx, id); err != nil {
			return err
		}
		if err := s.engines.SetActive(ctx, id, true); err != nil {
			return err
		}
		engine.Active = true

		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditActivate,
			Table:       "inference_engines",
			RecordID:    id.String(),
			Description: fmt.Sprintf("Activated engine %s", engine.ArtifactName),
			Before:      before,
			After:       dto.EngineToResponse(engine),
		})
	})
	if err != nil {
		return nil, err
	}

	s.afterEngineChange(ctx)
	logger.Engine("engine_activated", "Inference engine activated", map[string]interface{}{
		"engine_id": id.String(),
		"actor":     actor.Username,
	})
	return engine, nil
}

func (s *EngineServiceImpl) Deactivate(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.InferenceEngine, error) {
	s.activateMu.Lock()
	defer s.activateMu.Unlock()

	var engine *models.InferenceEngine
	wasActive := false
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		engine, err = s.engines.GetByID(ctx, id)
		if err != nil {
			return err
		}
		wasActive = engine.Active
		before := dto.EngineToResponse(engine)

		if err := s.engines.SetActive(ctx, id, false); err != nil {
			return err
		}
		engine.Active = false

		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditDeactivate,
			Table:       "inference_engines",
			RecordID:    id.String(),
			Description: fmt.Sprintf("Deactivated engine %s", engine.ArtifactName),
			Before:      before,
			After:       dto.EngineToResponse(engine),
		})
	})
	if err != nil {
		return nil, err
	}

	// an inactive engine was never what the detector served
	if wasActive {
		s.afterEngineChange(ctx)
	}
	logger.Engine("engine_deactivated", "Inference engine deactivated", map[string]interface{}{
		"engine_id": id.String(),
		"actor":     actor.Username,
	})
	return engine, nil
}

// Delete removes the registry row, then the artifact. A failed file removal
// is logged and does not undo the delete.
func (s *EngineServiceImpl) Delete(ctx context.Context, actor services.Actor, id uuid.UUID) error {
	s.activateMu.Lock()
	defer s.activateMu.Unlock()

	var engine *models.InferenceEngine
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		engine, err = s.engines.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if engine.Active {
			return apperrors.Conflict("engine %s is active; activate another engine first", engine.ArtifactName)
		}

		modelRefs, err := s.engines.CountACModelRefs(ctx, id)
		if err != nil {
			return err
		}
		if modelRefs > 0 {
			return apperrors.Conflict("engine %s is used by %d AC model(s)", engine.ArtifactName, modelRefs)
		}

		records, err := s.engines.CountInspectionRefs(ctx, id)
		if err != nil {
			return err
		}
		if records > 0 {
			return apperrors.Conflict("engine %s is referenced by %d inspection record(s)", engine.ArtifactName, records)
		}

		if err := s.engines.Delete(ctx, id); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor, services.AuditEntry{
			Action:      models.AuditDelete,
			Table:       "inference_engines",
			RecordID:    id.String(),
			Description: fmt.Sprintf("Deleted engine %s", engine.ArtifactName),
			Before:      dto.EngineToResponse(engine),
		})
	})
	if err != nil {
		return err
	}

	if err := s.storage.Delete(engine.ArtifactName); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn(logger.CategoryStorage, "artifact_missing", "Artifact was already gone when its engine was deleted", map[string]interface{}{
				"artifact": engine.ArtifactName,
			})
		} else {
			logger.StorageError("artifact_delete_failed", "Failed to remove artifact of deleted engine", err, map[string]interface{}{
				"artifact": engine.ArtifactName,
			})
		}
	}

	logger.Engine("engine_deleted", "Inference engine deleted", map[string]interface{}{
		"engine_id": id.String(),
		"artifact":  engine.ArtifactName,
		"actor":     actor.Username,
	})
	return nil
}

func (s *EngineServiceImpl) DetectorStatus() services.HandleStatus {
	return s.handle.Status()
}

func (s *EngineServiceImpl) CheckActive(ctx context.Context) (*models.InferenceEngine, error) {
	active, err := s.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer active.Release()
	engine := active.Engine
	return &engine, nil
}

// afterEngineChange drops the local detector and tells peers to do the same.
func (s *EngineServiceImpl) afterEngineChange(ctx context.Context) {
	s.handle.Invalidate()
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Publish(ctx, services.TopicEngine); err != nil {
		logger.EngineError("invalidation_publish_failed", "Failed to notify peers of engine change", err, nil)
	}
}

// sanitizeVersion keeps characters that are safe inside a filename.
func sanitizeVersion(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '/':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), ".-")
}
