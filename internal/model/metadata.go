package model

// FileRecord represents a single item in the file metadata table. It is
// written once at upload time and never updated.
type FileRecord struct {
	ID         string         `dynamodbav:"id" json:"id"`
	UploadedAt string         `dynamodbav:"UploadedAt" json:"UploadedAt"`
	Metadata   RecordMetadata `dynamodbav:"Metadata" json:"Metadata"`
}

// RecordMetadata is the metadata sub-object persisted with every FileRecord.
type RecordMetadata struct {
	Author      string `dynamodbav:"author" json:"author"`
	Description string `dynamodbav:"description" json:"description"`
}

// NewRecordMetadata builds the persisted form of client supplied metadata,
// substituting DefaultDescription when none was given.
func NewRecordMetadata(m UploadMetadata) RecordMetadata {
	author, _ := m.Author()
	desc := m.Description()
	if desc == "" {
		desc = DefaultDescription
	}
	return RecordMetadata{Author: author, Description: desc}
}
