package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
	"github.com/sh3r4rd/file_metadata/internal/multipart"
	"github.com/sh3r4rd/file_metadata/internal/storage"
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type uploadState string

const (
	stateReceived        uploadState = "Received"
	stateValidated       uploadState = "Validated"
	stateUploading       uploadState = "Uploading"
	stateMetadataWriting uploadState = "MetadataWriting"
	stateCompleted       uploadState = "Completed"
	stateRejected        uploadState = "Rejected"
	stateFailed          uploadState = "Failed"
)

// Upload stores a multipart file upload in the blob store and its metadata
// in the record store.
type Upload struct {
	blobs    storage.BlobStore
	records  storage.RecordStore
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	maxBytes int64
}

// UploadOption configures an Upload handler.
type UploadOption func(*Upload)

// WithClock overrides the time source used for keys and timestamps.
func WithClock(now func() time.Time) UploadOption {
	return func(h *Upload) { h.now = now }
}

// WithIDGenerator overrides the random suffix of generated file ids.
func WithIDGenerator(newID func() string) UploadOption {
	return func(h *Upload) { h.newID = newID }
}

// WithMaxUploadBytes caps the decoded body size. Zero disables the cap.
func WithMaxUploadBytes(n int64) UploadOption {
	return func(h *Upload) { h.maxBytes = n }
}

// NewUpload returns an Upload handler writing to blobs and records.
func NewUpload(blobs storage.BlobStore, records storage.RecordStore, logger *slog.Logger, opts ...UploadOption) *Upload {
	h := &Upload{
		blobs:    blobs,
		records:  records,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		maxBytes: model.MaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is the Lambda entrypoint. Failures are reported through the
// response status; the returned error is always nil.
func (h *Upload) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := h.logger.With("request_id", req.RequestContext.RequestID)
	logger.Debug("upload state", "state", stateReceived)

	parsed, meta, err := h.validate(req)
	if err != nil {
		logger.Info("upload rejected", "state", stateRejected, "kind", apperr.KindOf(err).String(), "err", err)
		return errorResponse(err), nil
	}
	logger.Debug("upload state", "state", stateValidated)

	now := h.now().UTC()
	key := fmt.Sprintf("%d_%s", now.UnixMilli(), h.newID())
	logger = logger.With("file_id", key)

	logger.Debug("upload state", "state", stateUploading, "bytes", len(parsed.File.Content))
	if err := h.blobs.PutObject(ctx, key, parsed.File.Content, parsed.File.ContentType); err != nil {
		logger.Error("blob write failed", "state", stateFailed, "err", err)
		return errorResponse(apperr.StorageFault("write blob", err)), nil
	}

	logger.Debug("upload state", "state", stateMetadataWriting)
	rec := model.FileRecord{
		ID:         key,
		UploadedAt: now.Format(isoMillis),
		Metadata:   model.NewRecordMetadata(meta),
	}
	if err := h.records.PutRecord(ctx, rec); err != nil {
		logger.Error("record write failed", "state", stateFailed, "err", err)
		h.compensate(ctx, logger, key)
		return errorResponse(apperr.StorageFault("write record", err)), nil
	}

	logger.Info("file uploaded", "state", stateCompleted, "author", rec.Metadata.Author)
	return jsonResponse(http.StatusOK, model.UploadResponse{
		Message:  model.MsgUploadSuccess,
		FileID:   key,
		Metadata: echoMetadata(meta, rec.Metadata),
	}), nil
}

// echoMetadata returns the client metadata with the stored description,
// so a defaulted description is visible in the response.
func echoMetadata(meta model.UploadMetadata, stored model.RecordMetadata) model.UploadMetadata {
	out := make(model.UploadMetadata, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out["description"] = stored.Description
	return out
}

func (h *Upload) validate(req events.APIGatewayProxyRequest) (*model.ParsedMultipart, model.UploadMetadata, error) {
	boundary, err := multipart.BoundaryFromHeaders(req.Headers)
	if err != nil {
		return nil, nil, err
	}

	body, err := decodeBody(req)
	if err != nil {
		return nil, nil, err
	}
	if h.maxBytes > 0 && int64(len(body)) > h.maxBytes {
		return nil, nil, apperr.Validation(fmt.Sprintf("Request body exceeds %d bytes", h.maxBytes))
	}

	parsed, err := multipart.Parse(body, boundary)
	if err != nil {
		return nil, nil, err
	}

	if parsed.File == nil {
		return nil, nil, apperr.Validation(model.MsgMissingFile)
	}
	if parsed.Metadata == nil {
		return nil, nil, apperr.Validation(model.MsgMissingMetadata)
	}
	if _, ok := parsed.Metadata.Author(); !ok {
		return nil, nil, apperr.Validation(model.MsgInvalidAuthor)
	}
	return parsed, parsed.Metadata, nil
}

// compensate removes the blob of an upload whose record could not be
// written. A failed delete leaves an orphaned blob, which is logged.
func (h *Upload) compensate(ctx context.Context, logger *slog.Logger, key string) {
	if err := h.blobs.DeleteObject(context.WithoutCancel(ctx), key); err != nil {
		logger.Error("orphaned blob left behind", "err", err)
		return
	}
	logger.Info("blob removed after record write failure")
}

func decodeBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, apperr.MalformedRequest(model.MsgBodyNotBase64, err)
	}
	return b, nil
}
