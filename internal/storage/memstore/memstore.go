// Package memstore provides in-memory blob and record stores for tests and
// the zero-configuration dev server.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
)

type object struct {
	content     []byte
	contentType string
}

// BlobStore is a map-backed storage.BlobStore.
type BlobStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewBlobStore() *BlobStore {
	return &BlobStore{objects: make(map[string]object)}
}

func (s *BlobStore) PutObject(ctx context.Context, key string, content []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{content: append([]byte{}, content...), contentType: contentType}
	return nil
}

func (s *BlobStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("object %s not found", key))
	}
	return append([]byte{}, obj.content...), nil
}

func (s *BlobStore) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// ContentType returns the content type an object was stored with.
func (s *BlobStore) ContentType(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.contentType, ok
}

// Len returns the number of stored objects.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// RecordStore is a map-backed storage.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]model.FileRecord
}

func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]model.FileRecord)}
}

// PutRecord stores rec. Records are write-once: an existing id is rejected.
func (s *RecordStore) PutRecord(ctx context.Context, rec model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return apperr.StorageFault("put record", fmt.Errorf("record %s already exists", rec.ID))
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *RecordStore) GetRecord(ctx context.Context, id string) (*model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("record %s not found", id))
	}
	return &rec, nil
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
