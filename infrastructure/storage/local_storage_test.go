package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/pkg/apperrors"
)

func TestSaveHashesAndStores(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := "fake weights"
	saved, err := s.Save(context.Background(), "yolov8_v1.0_20260101_120000.pt", strings.NewReader(content), 1024)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(content))
	assert.Equal(t, hex.EncodeToString(sum[:]), saved.SHA256)
	assert.Equal(t, int64(len(content)), saved.Size)
	assert.True(t, s.Exists(saved.Name))

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, saved.Name, files[0].Name)
}

func TestSaveRejectsOversizedArtifact(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "big.pt", strings.NewReader(strings.Repeat("x", 11)), 10)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.False(t, s.Exists("big.pt"))

	files, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSaveRejectsDuplicates(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "a.pt", strings.NewReader("1"), 10)
	require.NoError(t, err)
	_, err = s.Save(context.Background(), "a.pt", strings.NewReader("2"), 10)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestPathRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../etc/passwd", "a/b.pt", "", ".hidden"} {
		_, err := s.Path(name)
		assert.ErrorIs(t, err, apperrors.ErrValidation, name)
	}
}

func TestDeleteMissingArtifact(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.Delete("missing.pt"))
}
