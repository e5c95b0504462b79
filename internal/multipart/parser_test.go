package multipart_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
	"github.com/sh3r4rd/file_metadata/internal/multipart"
)

type part struct {
	name        string
	filename    string
	contentType string
	content     string
}

func buildBody(boundary, eol string, parts ...part) []byte {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--" + boundary + eol)
		b.WriteString(`Content-Disposition: form-data; name="` + p.name + `"`)
		if p.filename != "" {
			b.WriteString(`; filename="` + p.filename + `"`)
		}
		b.WriteString(eol)
		if p.contentType != "" {
			b.WriteString("Content-Type: " + p.contentType + eol)
		}
		b.WriteString(eol)
		b.WriteString(p.content)
		b.WriteString(eol)
	}
	b.WriteString("--" + boundary + "--" + eol)
	return []byte(b.String())
}

func TestBoundary(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
		wantErr     bool
	}{
		{"bare token", "multipart/form-data; boundary=XYZ", "XYZ", false},
		{"quoted token", `multipart/form-data; boundary="a b c"`, "a b c", false},
		{"browser style", "multipart/form-data; boundary=----WebKitFormBoundary7MA4YWxkTrZu0gW", "----WebKitFormBoundary7MA4YWxkTrZu0gW", false},
		{"tspecials fall back", "multipart/form-data; boundary=a(b)c", "a(b)c", false},
		{"upper case media type", "Multipart/Form-Data; boundary=XYZ", "XYZ", false},
		{"json content type", "application/json", "", true},
		{"missing boundary", "multipart/form-data", "", true},
		{"empty boundary", "multipart/form-data; boundary=", "", true},
		{"empty header", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := multipart.Boundary(tt.contentType)
			if tt.wantErr {
				if apperr.KindOf(err) != apperr.KindMalformedRequest {
					t.Fatalf("err = %v, want MalformedRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBoundaryFromHeadersCaseInsensitive(t *testing.T) {
	for _, key := range []string{"Content-Type", "content-type", "CONTENT-TYPE"} {
		t.Run(key, func(t *testing.T) {
			got, err := multipart.BoundaryFromHeaders(map[string]string{
				"Accept": "*/*",
				key:      "multipart/form-data; boundary=XYZ",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != "XYZ" {
				t.Errorf("got %q, want %q", got, "XYZ")
			}
		})
	}

	if _, err := multipart.BoundaryFromHeaders(nil); apperr.KindOf(err) != apperr.KindMalformedRequest {
		t.Errorf("nil headers: err = %v, want MalformedRequest", err)
	}
}

func TestParseFileAndMetadata(t *testing.T) {
	body := buildBody("XYZ", "\r\n",
		part{name: "file", filename: "hello.txt", contentType: "text/plain", content: "hello"},
		part{name: "metadata", content: `{"author":"alice","description":"greeting"}`},
	)

	got, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got.File == nil {
		t.Fatal("file part missing")
	}
	if string(got.File.Content) != "hello" {
		t.Errorf("file content = %q, want %q", got.File.Content, "hello")
	}
	if got.File.ContentType != "text/plain" {
		t.Errorf("file content type = %q, want %q", got.File.ContentType, "text/plain")
	}

	if got.Metadata == nil {
		t.Fatal("metadata part missing")
	}
	if author, _ := got.Metadata.Author(); author != "alice" {
		t.Errorf("author = %q, want %q", author, "alice")
	}
	if got.Metadata.Description() != "greeting" {
		t.Errorf("description = %q, want %q", got.Metadata.Description(), "greeting")
	}
}

func TestParseBinaryContentVerbatim(t *testing.T) {
	content := []byte{0x00, 0xff, 0x0d, 0x0a, 0x0d, 0x0a, 0x80, 0xfe, '-', '-', 0x0a}
	body := buildBody("XYZ", "\r\n",
		part{name: "file", content: string(content)},
		part{name: "metadata", content: `{"author":"alice"}`},
	)

	got, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(got.File.Content, content) {
		t.Errorf("file content = %x, want %x", got.File.Content, content)
	}
	if got.File.ContentType != model.ContentTypeOctetStream {
		t.Errorf("default content type = %q", got.File.ContentType)
	}
}

func TestParseBoundaryInsideContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"mid line", "before --XYZ after"},
		{"line start with suffix", "line one\r\n--XYZabc\r\nline three"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildBody("XYZ", "\r\n",
				part{name: "file", content: tt.content},
				part{name: "metadata", content: `{"author":"alice"}`},
			)

			got, err := multipart.Parse(body, "XYZ")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if string(got.File.Content) != tt.content {
				t.Errorf("file content = %q, want %q", got.File.Content, tt.content)
			}
			if got.Metadata == nil {
				t.Error("metadata part missing")
			}
		})
	}
}

func TestParseMissingMetadata(t *testing.T) {
	body := buildBody("XYZ", "\r\n", part{name: "file", content: "hello"})

	got, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Metadata != nil {
		t.Errorf("metadata = %v, want absent", got.Metadata)
	}
	if got.File == nil {
		t.Error("file part missing")
	}
}

func TestParseInvalidMetadataJSON(t *testing.T) {
	body := buildBody("XYZ", "\r\n",
		part{name: "file", content: "hello"},
		part{name: "metadata", content: `{"author":`},
	)

	got, err := multipart.Parse(body, "XYZ")
	if apperr.KindOf(err) != apperr.KindMalformedMetadata {
		t.Fatalf("err = %v, want MalformedMetadata", err)
	}
	if msg := apperr.Message(err); !strings.Contains(msg, model.ContentTypeMultipart) {
		t.Errorf("message = %q, want it to name %q", msg, model.ContentTypeMultipart)
	}
	if got != nil {
		t.Errorf("got %+v, want nil result on error", got)
	}
}

func TestParseNonObjectMetadata(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantNil   bool
		wantEmpty bool
	}{
		{"null", "null", true, false},
		{"number", "42", false, true},
		{"array", `["alice"]`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildBody("XYZ", "\r\n", part{name: "metadata", content: tt.content})

			got, err := multipart.Parse(body, "XYZ")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if tt.wantNil && got.Metadata != nil {
				t.Errorf("metadata = %v, want nil", got.Metadata)
			}
			if tt.wantEmpty && (got.Metadata == nil || len(got.Metadata) != 0) {
				t.Errorf("metadata = %v, want empty", got.Metadata)
			}
		})
	}
}

func TestParseEmptyFile(t *testing.T) {
	body := buildBody("XYZ", "\r\n",
		part{name: "file", content: ""},
		part{name: "metadata", content: `{"author":"alice"}`},
	)

	got, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.File == nil {
		t.Fatal("empty file part reported as absent")
	}
	if got.File.Content == nil || len(got.File.Content) != 0 {
		t.Errorf("file content = %v, want zero-length", got.File.Content)
	}
}

func TestParseRegexSpecialBoundary(t *testing.T) {
	boundaries := []string{"a.b*c+d", "x|y", "(group)?", "[set]^$", `back\slash`}

	for _, boundary := range boundaries {
		t.Run(boundary, func(t *testing.T) {
			body := buildBody(boundary, "\r\n",
				part{name: "file", content: "hello"},
				part{name: "metadata", content: `{"author":"alice"}`},
			)

			got, err := multipart.Parse(body, boundary)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got.File == nil || string(got.File.Content) != "hello" {
				t.Errorf("file = %+v, want content %q", got.File, "hello")
			}
			if got.Metadata == nil {
				t.Error("metadata part missing")
			}
		})
	}
}

func TestParseLineEndings(t *testing.T) {
	tests := []struct {
		name string
		eol  string
	}{
		{"crlf", "\r\n"},
		{"lf", "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildBody("XYZ", tt.eol,
				part{name: "file", content: "hello"},
				part{name: "metadata", content: `{"author":"alice"}`},
			)

			got, err := multipart.Parse(body, "XYZ")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got.File == nil || string(got.File.Content) != "hello" {
				t.Errorf("file = %+v, want content %q", got.File, "hello")
			}
			if author, ok := got.Metadata.Author(); !ok || author != "alice" {
				t.Errorf("author = %q, want %q", author, "alice")
			}
		})
	}
}

func TestParseIgnoresUnknownParts(t *testing.T) {
	body := buildBody("XYZ", "\r\n",
		part{name: "extra", content: "ignored"},
		part{name: "file", content: "hello"},
		part{name: "filename", content: "not the file"},
		part{name: "metadata", content: `{"author":"alice"}`},
	)

	got, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(got.File.Content) != "hello" {
		t.Errorf("file content = %q, want %q", got.File.Content, "hello")
	}
}

func TestParseDispositionMimeRejects(t *testing.T) {
	body := []byte("--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=my report.pdf\r\n" +
		"Content-Type: application/pdf\r\n\r\n" +
		"%PDF-1.4\r\n" +
		"--XYZ\r\n" +
		"Content-Disposition: form-data; name=metadata; filename=\r\n\r\n" +
		`{"author":"alice"}` + "\r\n" +
		"--XYZ--\r\n")

	got, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.File == nil {
		t.Fatal("file part missing")
	}
	if string(got.File.Content) != "%PDF-1.4" {
		t.Errorf("file content = %q, want %q", got.File.Content, "%PDF-1.4")
	}
	if got.Metadata == nil {
		t.Fatal("metadata part missing")
	}
	if author, _ := got.Metadata.Author(); author != "alice" {
		t.Errorf("author = %q, want %q", author, "alice")
	}
}

func TestParsePreambleAndMissingCloseDelimiter(t *testing.T) {
	body := []byte("preamble text\r\n" +
		"--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"file\"\r\n" +
		"\r\n" +
		"hello\r\n")

	got, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.File == nil || string(got.File.Content) != "hello" {
		t.Errorf("file = %+v, want content %q", got.File, "hello")
	}
}

func TestParseNoParts(t *testing.T) {
	got, err := multipart.Parse([]byte("no delimiters here"), "XYZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.File != nil || got.Metadata != nil {
		t.Errorf("got %+v, want empty result", got)
	}
}

func TestParseEmptyBoundary(t *testing.T) {
	if _, err := multipart.Parse([]byte("--\r\n"), ""); apperr.KindOf(err) != apperr.KindMalformedRequest {
		t.Errorf("err = %v, want MalformedRequest", err)
	}
}

func TestParseIdempotent(t *testing.T) {
	body := buildBody("XYZ", "\r\n",
		part{name: "file", content: "hello"},
		part{name: "metadata", content: `{"author":"alice","tags":["a","b"]}`},
	)

	first, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	second, err := multipart.Parse(body, "XYZ")
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("parse not idempotent:\n  first  %+v\n  second %+v", first, second)
	}
}
