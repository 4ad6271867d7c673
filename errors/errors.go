package errors

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Kind classifies an error for recovery decisions. The goal executor maps
// kinds to recorded outcomes instead of aborting the run.
type Kind string

const (
	KindNone           Kind = ""
	KindScopeViolation Kind = "scope_violation"
	KindNotFound       Kind = "not_found"
	KindNotADirectory  Kind = "not_a_directory"
	KindIO             Kind = "io_error"
	KindPlanning       Kind = "planning_error"
	KindModel          Kind = "model_error"
	KindAPI            Kind = "api_error"
	KindCancelled      Kind = "cancelled"
)

// Error carries a kind alongside the message and optional cause.
type Error struct {
	ErrKind Kind
	msg     string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.ErrKind }

// New creates a new error with file and line number information.
func New(format string, a ...interface{}) error {
	return &Error{msg: callerPrefix(2) + fmt.Sprintf(format, a...)}
}

// E creates a new kinded error with file and line number information.
func E(kind Kind, format string, a ...interface{}) error {
	return &Error{ErrKind: kind, msg: callerPrefix(2) + fmt.Sprintf(format, a...)}
}

// Wrapf adds context (including file and line number) to an existing error.
// If the provided error is nil, Wrapf returns nil. The wrapped error keeps
// the kind of its cause unless the cause is unkinded.
func Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{ErrKind: KindOf(err), msg: callerPrefix(2) + fmt.Sprintf(format, a...), cause: err}
}

// WrapKind is Wrapf with an explicit kind, overriding whatever the cause carried.
func WrapKind(err error, kind Kind, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{ErrKind: kind, msg: callerPrefix(2) + fmt.Sprintf(format, a...), cause: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors
// (including nil) report KindNone.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.ErrKind
	}
	return KindNone
}

// Is reports whether any error in err's chain carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func callerPrefix(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "[???:0] "
	}
	return fmt.Sprintf("[%s:%d] ", filepath.Base(file), line)
}
