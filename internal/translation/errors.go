package translation

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a call to the translation service failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidRequest
	KindTransport
	KindStatus
	KindMalformed
	KindUploadRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidRequest:
		return "invalid request"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed response"
	case KindUploadRejected:
		return "upload rejected"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries the failure kind alongside the underlying cause.
type Error struct {
	Kind ErrorKind
	Op   string
	// Status is the HTTP status for KindStatus errors.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf wraps a formatted cause into an Error of the given kind.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return newError(kind, op, fmt.Errorf(format, args...))
}

// Wrap attaches kind and op to err. A nil err yields nil.
func Wrap(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return newError(kind, op, err)
}

// KindOf extracts the ErrorKind from err. Errors that carry no kind are
// reported as transport failures; nil is KindNone.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindTransport
}
