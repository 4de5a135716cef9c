package core

import (
	"errors"
	"fmt"
)

// ValidationError reports caller input the engine refuses to act on: a bad
// enum value, an empty required field, a malformed date. It is never retried
// automatically.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an update or restore against an id or path that does
// not exist. Deletes on missing ids are no-ops and never produce one.
type NotFoundError struct {
	Kind string // "transaction", "goal", "file", ...
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Ref)
}

// NotFound builds a NotFoundError for the given record kind and reference.
func NotFound(kind, ref string) error {
	return &NotFoundError{Kind: kind, Ref: ref}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
