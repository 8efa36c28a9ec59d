package memory

import (
	"errors"
	"fmt"
)

// ValidationError reports caller input that was rejected before any write
// reached the database: empty or oversized names, negative counters, unknown
// enum members, duplicate project names, or references to projects that do
// not exist.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// validationf builds a ValidationError from a format string.
func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// DatabaseError reports a storage failure. It always wraps the underlying
// driver error; operations that were mid-transaction have been rolled back
// by the time a DatabaseError is returned.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *DatabaseError) Unwrap() error { return e.Err }

// dbError wraps err as a DatabaseError for the named operation.
func dbError(op string, err error) error {
	return &DatabaseError{Op: op, Err: err}
}

// IsDatabase reports whether err is (or wraps) a DatabaseError.
func IsDatabase(err error) bool {
	var d *DatabaseError
	return errors.As(err, &d)
}
