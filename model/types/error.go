package types

import (
	"errors"
	"fmt"
)

// Kind classifies a failure surfaced by a task action.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "notFound"
	KindSuspended     Kind = "suspended"
	KindInvalidState  Kind = "invalidState"
	KindConfiguration Kind = "configuration"
	KindOperation     Kind = "operation"
	// KindConflict signals that the state an action depended on changed
	// between read and commit; the caller may retry the whole action.
	KindConflict Kind = "conflict"
)

// Sentinels usable with errors.Is, e.g. errors.Is(err, types.ErrNotFound).
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrSuspended     = &Error{Kind: KindSuspended}
	ErrInvalidState  = &Error{Kind: KindInvalidState}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrOperation     = &Error{Kind: KindOperation}
	ErrConflict      = &Error{Kind: KindConflict}
)

// Error is the single user-facing failure type of task actions.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err or an empty kind when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NewValidationError(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewSuspendedError(format string, args ...interface{}) error {
	return &Error{Kind: KindSuspended, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidStateError(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewOperationError wraps an engine failure, re-surfacing its message.
func NewOperationError(cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: KindOperation, Message: cause.Error(), Cause: cause}
}

// Surface leaves classified errors untouched and wraps anything else as an
// operation error.
func Surface(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return NewOperationError(err)
}
