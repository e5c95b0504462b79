// Package cachestore puts a redis read-through cache in front of a record
// store. File records are never updated after upload, so a cached entry can
// only expire, never go stale.
package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sh3r4rd/file_metadata/internal/model"
	"github.com/sh3r4rd/file_metadata/internal/storage"
)

const keyPrefix = "file-record:"

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis creates a new Redis client and verifies the connection
func NewRedis(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// Store wraps a storage.RecordStore. Cache failures are logged and never
// surface to callers.
type Store struct {
	next   storage.RecordStore
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func New(next storage.RecordStore, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{next: next, client: client, ttl: ttl, logger: logger}
}

func (s *Store) PutRecord(ctx context.Context, rec model.FileRecord) error {
	if err := s.next.PutRecord(ctx, rec); err != nil {
		return err
	}
	s.set(ctx, rec)
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (*model.FileRecord, error) {
	b, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	switch {
	case err == nil:
		var rec model.FileRecord
		if err := json.Unmarshal(b, &rec); err == nil {
			return &rec, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "id", id)
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("record cache read failed", "id", id, "err", err)
	}

	rec, err := s.next.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, *rec)
	return rec, nil
}

func (s *Store) set(ctx context.Context, rec model.FileRecord) {
	b, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("record cache encode failed", "id", rec.ID, "err", err)
		return
	}
	if err := s.client.Set(ctx, keyPrefix+rec.ID, b, s.ttl).Err(); err != nil {
		s.logger.Warn("record cache write failed", "id", rec.ID, "err", err)
	}
}
