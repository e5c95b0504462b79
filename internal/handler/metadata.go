package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
	"github.com/sh3r4rd/file_metadata/internal/storage"
)

// Metadata looks up the metadata of a stored file by its id.
type Metadata struct {
	records storage.RecordStore
	logger  *slog.Logger
}

// NewMetadata returns a Metadata handler reading from records.
func NewMetadata(records storage.RecordStore, logger *slog.Logger) *Metadata {
	return &Metadata{records: records, logger: logger}
}

// Handle is the Lambda entrypoint for GET /metadata/{file_id}.
func (h *Metadata) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := h.logger.With("request_id", req.RequestContext.RequestID)

	id := req.PathParameters[model.PathParamFileID]
	if id == "" {
		return errorResponse(apperr.Validation(model.MsgMissingFileID)), nil
	}
	logger = logger.With("file_id", id)

	rec, err := h.records.GetRecord(ctx, id)
	if apperr.IsNotFound(err) {
		logger.Info("file record not found")
		return jsonResponse(http.StatusNotFound, model.MessageResponse{
			Message: fmt.Sprintf("File with id %s not found", id),
		}), nil
	}
	if err != nil {
		logger.Error("error retrieving metadata", "err", err)
		return errorResponse(apperr.StorageFault("read record", err)), nil
	}

	return jsonResponse(http.StatusOK, model.MetadataResponse{
		Message:  model.MsgMetadataRetrieved,
		Metadata: rec.Metadata,
	}), nil
}
