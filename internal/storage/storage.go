// Package storage defines the blob and record store collaborators used by the
// upload and metadata handlers.
package storage

import (
	"context"

	"github.com/sh3r4rd/file_metadata/internal/model"
)

// BlobStore stores uploaded file content by key.
// This can be implemented by S3, MinIO, the local filesystem, etc.
type BlobStore interface {
	// PutObject stores content under key, replacing any existing object.
	PutObject(ctx context.Context, key string, content []byte, contentType string) error

	// GetObject returns the content stored under key. A missing key is an
	// apperr.KindNotFound error.
	GetObject(ctx context.Context, key string) ([]byte, error)

	// DeleteObject removes the object stored under key.
	DeleteObject(ctx context.Context, key string) error
}

// RecordStore stores FileRecords by id.
type RecordStore interface {
	// PutRecord writes rec under rec.ID.
	PutRecord(ctx context.Context, rec model.FileRecord) error

	// GetRecord returns the record stored under id. A missing record is an
	// apperr.KindNotFound error.
	GetRecord(ctx context.Context, id string) (*model.FileRecord, error)
}
