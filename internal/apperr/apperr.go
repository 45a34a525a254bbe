// Package apperr defines the domain error taxonomy shared by services and
// the API layer. Every error carries a machine-readable kind and a
// human-readable detail; the API layer maps kinds to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of domain error.
type Kind string

// Error kinds.
const (
	InvalidFileType       Kind = "invalid_file_type"
	InvalidFormat         Kind = "invalid_format"
	TemplateNotConfigured Kind = "template_not_configured"
	Unauthorized          Kind = "unauthorized"
	Forbidden             Kind = "forbidden"
	NotFound              Kind = "not_found"
	Internal              Kind = "internal"
)

// Error is a domain error with a kind and detail message.
type Error struct {
	Kind   Kind
	Detail string
	err    error
}

// New creates a domain error.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf creates a domain error with a formatted detail message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error wrapping an underlying cause.
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// KindOf returns the kind of err, or Internal for non-domain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
