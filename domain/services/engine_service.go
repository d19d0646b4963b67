package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"screw-inspection/domain/models"
)

type RegisterEngineInput struct {
	Kind        string
	Version     string
	Description string
	FileName    string // client-side name, used only for its extension
	Size        int64  // declared size, -1 when unknown
	Content     io.Reader
}

// EngineService is the inference engine registry
type EngineService interface {
	Register(ctx context.Context, actor Actor, in RegisterEngineInput) (*models.InferenceEngine, error)
	List(ctx context.Context) ([]models.InferenceEngine, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InferenceEngine, error)

	// Activate makes id the only active engine and invalidates the detector cache
	Activate(ctx context.Context, actor Actor, id uuid.UUID) (*models.InferenceEngine, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) (*models.InferenceEngine, error)

	// Delete fails with a conflict while the engine is active or referenced
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error

	DetectorStatus() HandleStatus
	// CheckActive forces a load of the active engine and reports the result
	CheckActive(ctx context.Context) (*models.InferenceEngine, error)
}
