package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure and determines the HTTP status it maps to.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindEmptyText
	KindExtraction
	KindConfiguration
	KindTransport
	KindUpstream
	KindMalformedUpstream
	KindInvalidJSON
	KindInvalidShape
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindValidation:        "validation",
	KindEmptyText:         "empty_text",
	KindExtraction:        "extraction",
	KindConfiguration:     "configuration",
	KindTransport:         "transport",
	KindUpstream:          "upstream",
	KindMalformedUpstream: "malformed_upstream",
	KindInvalidJSON:       "invalid_json",
	KindInvalidShape:      "invalid_shape",
}

// String returns the log-friendly name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// HTTPStatus maps the kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindEmptyText:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single failure value services return. It carries the
// user-facing message and the status mapping in one place, separate from
// the wrapped cause (which is only for logs).
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error that preserves the underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// From extracts the *Error in err's chain, or wraps a plain error as
// KindUnknown so callers always get a status mapping.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
