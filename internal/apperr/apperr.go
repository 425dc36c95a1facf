// Package apperr defines the error kinds surfaced to users of the upload and
// calculator surfaces.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a surface-level failure.
type Kind string

const (
	// KindInvalidFileType means the selected file is not a PDF.
	KindInvalidFileType Kind = "invalid_file_type"
	// KindRequestFailed covers non-2xx responses, transport failures and
	// service-reported errors.
	KindRequestFailed Kind = "request_failed"
	// KindMalformedResponse means the service answered 2xx but the body did not
	// have the expected shape.
	KindMalformedResponse Kind = "malformed_response"
	// KindBusy means a request is already in flight on the same surface.
	KindBusy Kind = "busy"
	// KindUnknown is returned by KindOf for errors that carry no kind.
	KindUnknown Kind = "unknown"
)

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a classified error wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
