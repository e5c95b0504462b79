package model

// Domain constants shared across handler, multipart, and storage packages.
const (
	ContentTypeMultipart   = "multipart/form-data"
	ContentTypeOctetStream = "application/octet-stream"
	HeaderContentType      = "Content-Type"
	PathParamFileID        = "file_id"
	DefaultDescription     = "No description provided"
	MaxUploadBytes         = int64(6 * 1_048_576) // 6 MB, synchronous Lambda payload ceiling
)

// Part names recognised in an upload body.
const (
	PartFile     = "file"
	PartMetadata = "metadata"
)

// Client-facing messages.
const (
	MsgUploadSuccess     = "File successfully uploaded and metadata saved!"
	MsgMetadataRetrieved = "Metadata retrieved successfully"
	MsgInternalError     = "Internal server error"
	MsgContentType       = "Request Content-Type must be multipart/form-data"
	MsgBodyNotBase64     = "Request body is not valid base64"
	MsgInvalidMetadata   = "Request Content-Type must be multipart/form-data with a valid JSON metadata part"
	MsgMissingFile       = "Missing file in the request."
	MsgMissingMetadata   = "Missing metadata in the request."
	MsgInvalidAuthor     = "'author' is required in metadata and must be a string."
	MsgMissingFileID     = "Missing file_id in the request URL"
)
