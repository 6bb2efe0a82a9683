package common

import (
	"errors"
	"fmt"
)

// Commonly used errors
var (
	ErrEmptyBody     = ErrInvalidField("body", errors.New("message is empty"))
	ErrNoReplyTarget = ErrInvalidInput("no reply target")
	ErrNoPermissions = ErrAccessDenied("insufficient permissions")
	ErrBodyTooLong   = ErrTooLong("body")
)

// StatusError is a simple error with HTTP status code attached. Field
// optionally names the input field the error refers to.
type StatusError struct {
	Err   error
	Code  int
	Field string
}

func (e StatusError) Error() string {
	var prefix string
	switch e.Code {
	case 400:
		prefix = "invalid input"
	case 403:
		prefix = "access denied"
	case 404:
		prefix = "not found"
	case 500:
		prefix = "internal server error"
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Err)
}

func (e StatusError) Unwrap() error {
	return e.Err
}

// ErrTooLong is passed, when a field exceeds the maximum string length for
// that specific field
func ErrTooLong(s string) error {
	return StatusError{Err: errors.New(s + " too long"), Code: 400}
}

// ErrInvalidInput is an error that invalid user input was supplied
func ErrInvalidInput(s string) error {
	return StatusError{Err: errors.New(s), Code: 400}
}

// ErrInvalidField reports invalid user input in a specific field
func ErrInvalidField(field string, err error) error {
	return StatusError{Err: err, Code: 400, Field: field}
}

// ErrAccessDenied is an error that user does not have enough access rights
func ErrAccessDenied(s string) error {
	return StatusError{Err: errors.New(s), Code: 403}
}

// ErrNotFound is an error that a requested entity does not exist
func ErrNotFound(kind string, id uint64) error {
	return StatusError{Err: fmt.Errorf("no %s %d", kind, id), Code: 404}
}

// ErrInvalidBoard is an error that an invalid board was provided
func ErrInvalidBoard(id uint64) error {
	return StatusError{Err: fmt.Errorf("board `%d` does not exist", id), Code: 404}
}

// IsNotFound returns, if err is or wraps a 404 StatusError
func IsNotFound(err error) bool {
	var se StatusError
	return errors.As(err, &se) && se.Code == 404
}

// IsValidation returns, if err is or wraps a 400 StatusError
func IsValidation(err error) bool {
	var se StatusError
	return errors.As(err, &se) && se.Code == 400
}

// CanIgnoreClientError returns, if client-caused error can be safely ignored
// and not logged
func CanIgnoreClientError(err error) bool {
	if err == nil {
		return true
	}

	if err, ok := err.(StatusError); ok {
		return err.Code >= 400 && err.Code < 500
	}

	err = errors.Unwrap(err)
	if err != nil {
		return CanIgnoreClientError(err)
	}
	return false
}
