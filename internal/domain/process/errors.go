package process

import (
	"errors"
	"fmt"
)

// Kind classifies control room errors
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindInvalidCommand Kind = "invalid_command"
	KindSpawnFailed    Kind = "spawn_failed"
	KindIO             Kind = "io_failure"
	KindTimeout        Kind = "timeout"
)

// Sentinel errors for errors.Is checks
var (
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrInvalidCommand = &Error{Kind: KindInvalidCommand}
	ErrSpawnFailed    = &Error{Kind: KindSpawnFailed}
	ErrIO             = &Error{Kind: KindIO}
	ErrTimeout        = &Error{Kind: KindTimeout}
)

// Error is a typed error returned by supervisor and runner operations
type Error struct {
	// Kind classifies the failure
	Kind Kind
	// Op is the operation that failed
	Op string
	// ID is the service or run involved, if any
	ID string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op
	}
	if e.ID != "" {
		msg = fmt.Sprintf("%s %s", msg, e.ID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" if err is not a control room error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// NotFound builds a NotFound error for the given resource
func NotFound(op, id, what string) *Error {
	return &Error{Kind: KindNotFound, Op: op, ID: id, Err: fmt.Errorf("%s not found: %s", what, id)}
}
