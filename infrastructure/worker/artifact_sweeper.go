package worker

import (
	"context"
	"fmt"
	"time"

	"screw-inspection/domain/repositories"
	"screw-inspection/infrastructure/storage"
	"screw-inspection/pkg/logger"
)

// ArtifactSweepJobID is the scheduler id of the orphan sweep
const ArtifactSweepJobID = "artifact-sweep"

type SweepResult struct {
	Scanned int      `json:"scanned"`
	Removed []string `json:"removed"`
	Kept    int      `json:"kept"`
}

// ArtifactSweeper deletes weight files no engine row references. Files
// younger than the grace period are kept so an upload whose registry row has
// not committed yet is never removed.
type ArtifactSweeper struct {
	engines   repositories.InferenceEngineRepository
	artifacts storage.ArtifactStorage
	grace     time.Duration
	timeout   time.Duration
	now       func() time.Time
}

func NewArtifactSweeper(engines repositories.InferenceEngineRepository, artifacts storage.ArtifactStorage, grace time.Duration) *ArtifactSweeper {
	return &ArtifactSweeper{
		engines:   engines,
		artifacts: artifacts,
		grace:     grace,
		timeout:   5 * time.Minute,
		now:       time.Now,
	}
}

func (s *ArtifactSweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	files, err := s.artifacts.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	names, err := s.engines.ListArtifactNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered artifacts: %w", err)
	}

	referenced := make(map[string]struct{}, len(names))
	for _, name := range names {
		referenced[name] = struct{}{}
	}

	cutoff := s.now().Add(-s.grace)
	result := &SweepResult{Scanned: len(files), Removed: []string{}}
	for _, f := range files {
		if _, ok := referenced[f.Name]; ok || f.ModTime.After(cutoff) {
			result.Kept++
			continue
		}
		if err := s.artifacts.Delete(f.Name); err != nil {
			logger.StorageError("orphan_delete_failed", "Failed to delete orphan artifact", err, map[string]interface{}{
				"artifact": f.Name,
			})
			result.Kept++
			continue
		}
		result.Removed = append(result.Removed, f.Name)
		logger.Storage("orphan_deleted", "Deleted orphan artifact", map[string]interface{}{
			"artifact": f.Name,
			"size":     f.Size,
		})
	}
	return result, nil
}

// Job adapts Sweep to the scheduler's task signature
func (s *ArtifactSweeper) Job() func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		result, err := s.Sweep(ctx)
		if err != nil {
			return err
		}
		logger.Scheduler("artifact_sweep", "Artifact sweep finished", map[string]interface{}{
			"scanned": result.Scanned,
			"removed": len(result.Removed),
		})
		return nil
	}
}
