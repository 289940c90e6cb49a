package moderation

import (
	"errors"
	"fmt"
	"modflow/backend/internal/permission"
)

// Error kinds. Every error returned by Service matches exactly one of them with errors.Is.
var (
	ErrForbidden       = permission.ErrForbidden
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPersistence     = errors.New("persistence failure")
)

// Error is a failure safe to show to a reviewer. Message names the offending id or
// the required tier; the underlying storage error, if any, is only reachable through Unwrap.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notFound(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}
