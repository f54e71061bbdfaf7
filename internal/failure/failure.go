// Package failure defines the error taxonomy shared by every stage and the
// FailureRecord written as a sentinel when a stage cannot finish.
package failure

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindUpstreamRejected  Kind = "UPSTREAM_REJECTED"
	KindUpstreamTransient Kind = "UPSTREAM_TRANSIENT_FAILURE"
	KindUnexpected        Kind = "UNEXPECTED_FAILURE"
	KindNotFound          Kind = "NOT_FOUND"
)

// Error is a classified failure. Code keeps the upstream classification
// (for example RESOURCE_EXHAUSTED or an HTTP status) when there is one.
type Error struct {
	Kind Kind
	Op   string
	Code string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func WithCode(kind Kind, op, code string, err error) *Error {
	return &Error{Kind: kind, Op: op, Code: code, Err: err}
}

func InvalidInput(op, format string, args ...interface{}) *Error {
	return New(KindInvalidInput, op, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the first classified error in err's chain,
// KindUnexpected for unclassified errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnexpected
}

// CodeOf returns the upstream classification carried by err, if any.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
