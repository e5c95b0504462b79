// Package multipart decodes multipart/form-data upload bodies into the file
// and metadata parts the upload handler needs.
//
// The body is walked with a byte scanner instead of being split on the
// delimiter. A delimiter only counts when it starts a line and is followed by
// a line break, whitespace or the closing "--", so a boundary token embedded
// in binary file content does not cut a part short.
package multipart

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
)

type state int

const (
	stateSeekBoundary state = iota
	stateReadHeaders
	stateReadBody
	stateDone
)

// BoundaryFromHeaders finds the Content-Type header (case-insensitively) and
// returns its boundary parameter.
func BoundaryFromHeaders(headers map[string]string) (string, error) {
	var contentType string
	for k, v := range headers {
		if strings.EqualFold(k, model.HeaderContentType) {
			contentType = v
			break
		}
	}
	return Boundary(contentType)
}

// Boundary extracts the boundary parameter from a multipart/form-data
// Content-Type value.
func Boundary(contentType string) (string, error) {
	if !strings.Contains(strings.ToLower(contentType), model.ContentTypeMultipart) {
		return "", apperr.MalformedRequest(model.MsgContentType, nil)
	}

	var boundary string
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		boundary = params["boundary"]
	} else if _, after, ok := strings.Cut(contentType, "boundary="); ok {
		// Lenient fallback for headers mime rejects, e.g. unquoted tspecials.
		boundary, _, _ = strings.Cut(after, ";")
		boundary = strings.Trim(strings.TrimSpace(boundary), `"`)
	}

	if boundary == "" {
		return "", apperr.MalformedRequest(model.MsgContentType, nil)
	}
	return boundary, nil
}

// Parse decodes body using boundary. Parts other than "file" and "metadata"
// are skipped; when a name repeats, the last part wins. Missing parts are
// left nil and are not an error.
func Parse(body []byte, boundary string) (*model.ParsedMultipart, error) {
	if boundary == "" {
		return nil, apperr.MalformedRequest(model.MsgContentType, nil)
	}

	s := &scanner{buf: body, delim: []byte("--" + boundary)}
	parsed := &model.ParsedMultipart{}

	var header textproto.MIMEHeader
	st := stateSeekBoundary
	for st != stateDone {
		switch st {
		case stateSeekBoundary:
			st = s.seekBoundary()
		case stateReadHeaders:
			header, st = s.readHeaders()
		case stateReadBody:
			content := s.readBody()
			if err := assign(parsed, header, content); err != nil {
				return nil, err
			}
			st = stateSeekBoundary
		}
	}

	return parsed, nil
}

func assign(parsed *model.ParsedMultipart, header textproto.MIMEHeader, content []byte) error {
	switch partName(header) {
	case model.PartFile:
		ct := header.Get(model.HeaderContentType)
		if ct == "" {
			ct = model.ContentTypeOctetStream
		}
		parsed.File = &model.FilePart{
			Content:     append([]byte{}, content...),
			ContentType: ct,
		}
	case model.PartMetadata:
		meta, err := decodeMetadata(content)
		if err != nil {
			return err
		}
		parsed.Metadata = meta
	}
	return nil
}

// decodeMetadata decodes the metadata part. A JSON null leaves metadata
// absent; any other non-object value yields empty metadata, which then fails
// author validation.
func decodeMetadata(content []byte) (model.UploadMetadata, error) {
	var v any
	if err := json.Unmarshal(content, &v); err != nil {
		return nil, apperr.MalformedMetadata(model.MsgInvalidMetadata, err)
	}

	switch m := v.(type) {
	case map[string]any:
		return model.UploadMetadata(m), nil
	case nil:
		return nil, nil
	default:
		return model.UploadMetadata{}, nil
	}
}

func partName(header textproto.MIMEHeader) string {
	disposition := header.Get("Content-Disposition")
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		return params["name"]
	}
	return scanName(disposition)
}

// scanName finds the name parameter of a disposition mime rejects, such as
// one with an unquoted filename containing spaces.
func scanName(disposition string) string {
	for _, param := range strings.Split(disposition, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "name") {
			continue
		}
		value = strings.TrimSpace(value)
		if unquoted, err := strconv.Unquote(value); err == nil {
			return unquoted
		}
		return strings.Trim(value, `"`)
	}
	return ""
}

type scanner struct {
	buf   []byte
	delim []byte
	pos   int
}

// seekBoundary moves past the next delimiter line.
func (s *scanner) seekBoundary() state {
	at := s.nextDelimiter(s.pos)
	if at < 0 {
		return stateDone
	}

	rest := s.buf[at+len(s.delim):]
	if bytes.HasPrefix(rest, []byte("--")) {
		return stateDone
	}

	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return stateDone
	}
	s.pos = at + len(s.delim) + nl + 1
	return stateReadHeaders
}

// readHeaders consumes header lines up to and including the blank line.
// Lines may end in CRLF or bare LF.
func (s *scanner) readHeaders() (textproto.MIMEHeader, state) {
	header := make(textproto.MIMEHeader)
	var lastKey string

	for {
		nl := bytes.IndexByte(s.buf[s.pos:], '\n')
		if nl < 0 {
			return nil, stateDone
		}
		line := bytes.TrimSuffix(s.buf[s.pos:s.pos+nl], []byte("\r"))
		s.pos += nl + 1

		if len(line) == 0 {
			return header, stateReadBody
		}

		if (line[0] == ' ' || line[0] == '\t') && lastKey != "" {
			vals := header[lastKey]
			vals[len(vals)-1] += " " + strings.TrimSpace(string(line))
			continue
		}

		key, value, ok := strings.Cut(string(line), ":")
		if !ok {
			continue
		}
		lastKey = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(key))
		header.Add(lastKey, strings.TrimSpace(value))
	}
}

// readBody returns the content up to the next delimiter, dropping the line
// break that precedes it. Without a further delimiter the part runs to the
// end of the body.
func (s *scanner) readBody() []byte {
	end := s.nextDelimiter(s.pos)
	if end < 0 {
		end = len(s.buf)
	}

	content := s.buf[s.pos:end]
	switch {
	case bytes.HasSuffix(content, []byte("\r\n")):
		content = content[:len(content)-2]
	case bytes.HasSuffix(content, []byte("\n")):
		content = content[:len(content)-1]
	}

	s.pos = end
	return content
}

// nextDelimiter returns the offset of the next delimiter at or after from
// that begins a line and is properly terminated, or -1.
func (s *scanner) nextDelimiter(from int) int {
	for from <= len(s.buf) {
		i := bytes.Index(s.buf[from:], s.delim)
		if i < 0 {
			return -1
		}
		at := from + i
		if (at == 0 || s.buf[at-1] == '\n') && s.terminated(at+len(s.delim)) {
			return at
		}
		from = at + 1
	}
	return -1
}

func (s *scanner) terminated(after int) bool {
	if after >= len(s.buf) {
		return true
	}
	switch s.buf[after] {
	case '\r', '\n', ' ', '\t':
		return true
	case '-':
		return after+1 < len(s.buf) && s.buf[after+1] == '-'
	}
	return false
}
