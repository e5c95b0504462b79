package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
)

// Store implements storage.BlobStore on the local filesystem
type Store struct {
	basePath string
}

// New creates a filesystem blob store rooted at basePath
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) PutObject(ctx context.Context, key string, content []byte, contentType string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperr.StorageFault("failed to create directory", err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return apperr.StorageFault("failed to write file", err)
	}
	return nil
}

func (s *Store) GetObject(ctx context.Context, key string) ([]byte, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound(fmt.Sprintf("object %s not found", key))
	}
	if err != nil {
		return nil, apperr.StorageFault("failed to read file", err)
	}
	return b, nil
}

func (s *Store) DeleteObject(ctx context.Context, key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.StorageFault("failed to delete file", err)
	}
	return nil
}

// path resolves key under basePath, rejecting keys that escape it.
func (s *Store) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", apperr.Validation(fmt.Sprintf("invalid object key %q", key))
	}
	return filepath.Join(s.basePath, clean), nil
}
