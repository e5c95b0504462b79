// Package apperr defines the error kinds surfaced by the upload and metadata
// handlers. Kinds are translated to HTTP status codes only at the handler
// boundary.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindMalformedRequest
	KindMalformedMetadata
	KindValidation
	KindNotFound
	KindStorageFault
)

func (k Kind) String() string {
	switch k {
	case KindMalformedRequest:
		return "MalformedRequest"
	case KindMalformedMetadata:
		return "MalformedMetadata"
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFound"
	case KindStorageFault:
		return "StorageFault"
	default:
		return "Unknown"
	}
}

// StatusCode maps a kind to the HTTP status returned to clients.
func (k Kind) StatusCode() int {
	switch k {
	case KindMalformedRequest, KindMalformedMetadata, KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to clients; Err is the
// underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func MalformedRequest(msg string, err error) *Error {
	return &Error{Kind: KindMalformedRequest, Message: msg, Err: err}
}

func MalformedMetadata(msg string, err error) *Error {
	return &Error{Kind: KindMalformedMetadata, Message: msg, Err: err}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func StorageFault(msg string, err error) *Error {
	return &Error{Kind: KindStorageFault, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is classified as KindNotFound.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
