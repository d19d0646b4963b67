package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/repositories"
	"screw-inspection/infrastructure/storage"
)

type stubEngines struct {
	repositories.InferenceEngineRepository
	names []string
}

func (s *stubEngines) ListArtifactNames(context.Context) ([]string, error) {
	return s.names, nil
}

func saveAged(t *testing.T, s *storage.LocalStorage, name string, age time.Duration) {
	t.Helper()
	_, err := s.Save(context.Background(), name, strings.NewReader("weights"), 1024)
	require.NoError(t, err)
	ts := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(filepath.Join(s.Dir(), name), ts, ts))
}

func TestSweepRemovesOnlyOldOrphans(t *testing.T) {
	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	saveAged(t, artifacts, "registered.pt", 72*time.Hour)
	saveAged(t, artifacts, "orphan_old.pt", 72*time.Hour)
	saveAged(t, artifacts, "orphan_fresh.pt", time.Minute)

	sweeper := NewArtifactSweeper(&stubEngines{names: []string{"registered.pt"}}, artifacts, 24*time.Hour)
	result, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, []string{"orphan_old.pt"}, result.Removed)
	assert.Equal(t, 2, result.Kept)
	assert.True(t, artifacts.Exists("registered.pt"))
	assert.True(t, artifacts.Exists("orphan_fresh.pt"))
	assert.False(t, artifacts.Exists("orphan_old.pt"))
}

func TestSweepJobOnEmptyDirectory(t *testing.T) {
	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	sweeper := NewArtifactSweeper(&stubEngines{}, artifacts, time.Hour)
	assert.NoError(t, sweeper.Job()())
}
