// Package bootstrap wires configured storage backends for the entrypoints.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sh3r4rd/file_metadata/internal/config"
	"github.com/sh3r4rd/file_metadata/internal/storage"
	"github.com/sh3r4rd/file_metadata/internal/storage/cachestore"
	"github.com/sh3r4rd/file_metadata/internal/storage/dynamostore"
	"github.com/sh3r4rd/file_metadata/internal/storage/localstore"
	"github.com/sh3r4rd/file_metadata/internal/storage/memstore"
	"github.com/sh3r4rd/file_metadata/internal/storage/s3store"
	"github.com/sh3r4rd/file_metadata/internal/storage/sqlitestore"
)

// Stores holds the configured collaborators. Close releases any connections.
type Stores struct {
	Blobs   storage.BlobStore
	Records storage.RecordStore
	closers []func() error
}

func (s *Stores) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewStores builds the blob and record stores for cfg.Storage.Backend and,
// when a redis address is configured, puts the record cache in front.
func NewStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stores, error) {
	st := &Stores{}

	switch cfg.Storage.Backend {
	case config.BackendAWS:
		blobs, err := s3store.New(ctx, s3store.Config{
			BucketName: cfg.Storage.BucketName,
			Region:     cfg.Storage.Region,
			Endpoint:   cfg.Storage.S3Endpoint,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		records, err := dynamostore.New(ctx, dynamostore.Config{
			TableName: cfg.Storage.TableName,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.DynamoDBEndpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize DynamoDB storage: %w", err)
		}
		st.Blobs, st.Records = blobs, records

	case config.BackendLocal:
		blobs, err := localstore.New(filepath.Join(cfg.Storage.LocalPath, "blobs"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		records, err := sqlitestore.New(cfg.Storage.LocalPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		st.Blobs, st.Records = blobs, records
		st.closers = append(st.closers, records.Close)

	case config.BackendMemory:
		st.Blobs, st.Records = memstore.NewBlobStore(), memstore.NewRecordStore()

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Cache.RedisAddr != "" {
		client, err := cachestore.NewRedis(ctx, cachestore.Config{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			st.Close()
			return nil, err
		}
		st.Records = cachestore.New(st.Records, client, cfg.Cache.TTL, logger)
		st.closers = append(st.closers, client.Close)
	}

	return st, nil
}
