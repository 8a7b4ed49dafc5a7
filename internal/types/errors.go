package types

import (
	"errors"
	"fmt"
)

// InputError is a request that was rejected before reaching any collaborator:
// missing file, empty query, missing document identifier, duplicate tabular
// index name. Its message is safe to show to the caller.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewInputError builds an InputError for the given field.
func NewInputError(field, format string, args ...interface{}) *InputError {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is (or wraps) an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// CollaboratorError is a failure inside an external collaborator (extraction,
// embedding, store I/O, completion). Op names the operation for logs; the
// wrapped cause is never shown to callers.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err as a failure of the named operation.
func NewCollaboratorError(op string, err error) *CollaboratorError {
	return &CollaboratorError{Op: op, Err: err}
}

// IsCollaboratorError reports whether err is (or wraps) a CollaboratorError.
func IsCollaboratorError(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
