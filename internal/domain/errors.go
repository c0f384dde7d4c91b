package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage matches any StorageError via errors.Is.
	ErrStorage = errors.New("storage failure")
	// ErrDataFormat matches any DataFormatError via errors.Is.
	ErrDataFormat = errors.New("malformed persisted data")
	// ErrInvalidState matches any InvalidStateError via errors.Is.
	ErrInvalidState = errors.New("invalid survey state")

	// ErrNoQuestions is returned by Start when the question dataset is empty.
	ErrNoQuestions = errors.New("no questions at this time")
	// ErrInvalidAnswer indicates an option index outside the current question's choices.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrInvalidUsername indicates a blank username.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrSessionNotFound is returned when no survey session is registered for a token.
	ErrSessionNotFound = errors.New("survey session not found")
)

// StorageError wraps an underlying read or write failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// DataFormatError reports persisted content that cannot be parsed into the expected shape.
type DataFormatError struct {
	Resource string
	Err      error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Resource, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

func (e *DataFormatError) Is(target error) bool { return target == ErrDataFormat }

// InvalidStateError reports an operation invoked outside its valid state.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// NewStorageError is shorthand used by storage backends.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// NewDataFormatError is shorthand used by storage backends.
func NewDataFormatError(resource string, err error) error {
	return &DataFormatError{Resource: resource, Err: err}
}
