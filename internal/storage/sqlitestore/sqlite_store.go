package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/glebarez/go-sqlite"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
)

var dbfile = "file_records.db"
var createTableQuery = "create table if not exists file_records(id varchar(256) not null primary key, uploaded_at varchar(64) not null, author varchar(512) not null, description text not null);"
var insertRecordQuery = "insert into file_records(id, uploaded_at, author, description) values(?, ?, ?, ?);"
var getRecordQuery = "select id, uploaded_at, author, description from file_records where id = ?;"

// Store implements storage.RecordStore on a local sqlite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (creating if needed) the record database inside directory.
func New(directory string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(directory, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(directory, dbfile))
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(createTableQuery); err != nil {
		db.Close()
		return nil, errors.Join(errors.New("failed to create tables"), err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) PutRecord(ctx context.Context, rec model.FileRecord) error {
	_, err := s.db.ExecContext(ctx, insertRecordQuery, rec.ID, rec.UploadedAt, rec.Metadata.Author, rec.Metadata.Description)
	if err != nil {
		s.logger.Error("insert file record", "id", rec.ID, "err", err)
		return apperr.StorageFault("failed to insert file record", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (*model.FileRecord, error) {
	var rec model.FileRecord
	err := s.db.QueryRowContext(ctx, getRecordQuery, id).
		Scan(&rec.ID, &rec.UploadedAt, &rec.Metadata.Author, &rec.Metadata.Description)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("file record not found", "id", id)
		return nil, apperr.NotFound(fmt.Sprintf("record %s not found", id))
	}
	if err != nil {
		s.logger.Error("select file record", "id", id, "err", err)
		return nil, apperr.StorageFault("failed to read file record", err)
	}
	return &rec, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
