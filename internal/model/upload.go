package model

// FilePart is the `file` part of an upload body.
type FilePart struct {
	Content     []byte
	ContentType string
}

// UploadMetadata is the decoded `metadata` part. Unknown fields are kept so
// they can be echoed back to the client.
type UploadMetadata map[string]any

// Author returns the author field when it is a non-empty string.
func (m UploadMetadata) Author() (string, bool) {
	author, ok := m["author"].(string)
	if !ok || author == "" {
		return "", false
	}
	return author, true
}

// Description returns the description field, or "" when absent or not a string.
func (m UploadMetadata) Description() string {
	desc, _ := m["description"].(string)
	return desc
}

// ParsedMultipart holds the recognised parts of a multipart/form-data body.
// A nil field means the part was not present.
type ParsedMultipart struct {
	File     *FilePart
	Metadata UploadMetadata
}
