package serviceimpl

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
)

const activeConfigKey = "active"

type ConfigResolverImpl struct {
	settings repositories.SettingsRepository
	acModels repositories.ACModelRepository
	cache    *cache.Cache

	mu         sync.Mutex
	generation uint64
}

// NewConfigResolver caches the resolved configuration for ttl. Writers call
// Invalidate after committing, so ttl only bounds staleness across instances
// when the invalidation bus is down.
func NewConfigResolver(settings repositories.SettingsRepository, acModels repositories.ACModelRepository, ttl time.Duration) *ConfigResolverImpl {
	return &ConfigResolverImpl{
		settings: settings,
		acModels: acModels,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (r *ConfigResolverImpl) ResolveActive(ctx context.Context) (*services.ActiveConfig, error) {
	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()

	if cached, ok := r.cache.Get(activeConfigKey); ok {
		cfg := *cached.(*services.ActiveConfig)
		return &cfg, nil
	}

	settings, err := r.settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	if settings.ActiveModelID == nil {
		return nil, apperrors.Unconfigured("no AC model is selected")
	}

	model, err := r.acModels.GetByID(ctx, *settings.ActiveModelID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Unconfigured("the selected AC model no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if !model.Active {
		return nil, apperrors.Unconfigured("the selected AC model %s is deactivated", model.Name)
	}

	cfg := &services.ActiveConfig{
		ModelID:             model.ID,
		ModelName:           model.Name,
		TargetCount:         model.TargetCount,
		ConfidenceThreshold: model.ConfidenceThreshold,
		CycleTimeSeconds:    model.CycleTimeSeconds,
		EngineID:            model.EngineID,
	}
	// a read that overlapped an Invalidate may be stale and is not cached
	r.mu.Lock()
	if r.generation == gen {
		r.cache.SetDefault(activeConfigKey, cfg)
	}
	r.mu.Unlock()

	out := *cfg
	return &out, nil
}

func (r *ConfigResolverImpl) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.cache.Flush()
}
