package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

var errSubmissionReused = errors.New("submissionId was already used for another object")

// NewSubmissionReusedError is returned when a replayed submission ID was recorded for another kind of write
// or another object.
func NewSubmissionReusedError() error {
	return NewValidationError(errSubmissionReused, FieldError{Field: "submissionId", Error: errSubmissionReused.Error()})
}

// NotFoundError is returned by repositories & services when the requested object does not exist.
type NotFoundError struct {
	message string
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{message: msg}
}

func (err NotFoundError) Error() string {
	return err.message
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// EmptyInputError is returned when an aggregate is requested over an empty set.
type EmptyInputError struct {
	message string
}

func NewEmptyInputError(msg string) error {
	return &EmptyInputError{message: msg}
}

func (err EmptyInputError) Error() string {
	return err.message
}

func IsEmptyInput(err error) bool {
	_, ok := errors.Cause(err).(*EmptyInputError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
