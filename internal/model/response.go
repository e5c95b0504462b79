package model

// UploadResponse is returned on a successful upload.
type UploadResponse struct {
	Message  string         `json:"message"`
	FileID   string         `json:"file_id"`
	Metadata UploadMetadata `json:"metadata"`
}

// MetadataResponse is returned when a metadata lookup succeeds.
type MetadataResponse struct {
	Message  string         `json:"message"`
	Metadata RecordMetadata `json:"metadata"`
}

// MessageResponse carries a bare message, used for not-found lookups.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned for any failed API request. Details is only set
// for internal failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
