package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"screw-inspection/pkg/apperrors"
)

// ErrTooLarge is returned when an artifact exceeds the size cap while streaming.
var ErrTooLarge = errors.New("artifact exceeds size limit")

// SavedArtifact describes a file written to the uploads directory
type SavedArtifact struct {
	Name   string
	Size   int64
	SHA256 string
}

// ArtifactFile is a directory listing entry
type ArtifactFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ArtifactStorage keeps detector weight files under one directory, addressed
// by bare filename.
type ArtifactStorage interface {
	Save(ctx context.Context, name string, r io.Reader, maxBytes int64) (*SavedArtifact, error)
	Delete(name string) error
	Exists(name string) bool
	// Path resolves a stored name to an absolute path for the current host
	Path(name string) (string, error)
	List() ([]ArtifactFile, error)
}

type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &LocalStorage{dir: abs}, nil
}

func (s *LocalStorage) Dir() string {
	return s.dir
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return apperrors.Validation("invalid artifact name %q", name)
	}
	return nil
}

func (s *LocalStorage) Path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Save streams r into a temp file, hashing as it goes, and renames it into
// place. An existing file with the same name is a conflict.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader, maxBytes int64) (*SavedArtifact, error) {
	target, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	if s.Exists(name) {
		return nil, apperrors.Conflict("artifact %s already exists", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	hasher := sha256.New()
	limited := io.LimitReader(&ctxReader{ctx: ctx, r: r}, maxBytes+1)
	written, err := io.Copy(io.MultiWriter(tmp, hasher), limited)
	closeErr := tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to flush artifact: %w", closeErr)
	}
	if written > maxBytes {
		return nil, ErrTooLarge
	}
	if written == 0 {
		return nil, apperrors.Validation("artifact is empty")
	}

	// Link fails if target appeared meanwhile, unlike Rename which replaces.
	if err := os.Link(tmpName, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, apperrors.Conflict("artifact %s already exists", name)
		}
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}

	return &SavedArtifact{
		Name:   name,
		Size:   written,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *LocalStorage) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *LocalStorage) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *LocalStorage) List() ([]ArtifactFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var files []ArtifactFile
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, ArtifactFile{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return files, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
