package openlog

import (
	"errors"
	"fmt"
)

// Session errors. They are returned as-is or wrapped; match with errors.Is.
var (
	ErrFileOpen        = errors.New("a file is already open")
	ErrFileNotOpen     = errors.New("no file is open")
	ErrListingActive   = errors.New("directory listing already active")
	ErrNoListing       = errors.New("no directory listing active")
	ErrNoEntry         = errors.New("no more directory entries")
	ErrNotFound        = errors.New("file not found")
	ErrInvalidPosition = errors.New("position beyond end of file")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrNoResetPin      = errors.New("no reset pin configured")
	ErrNotAlive        = errors.New("peripheral not responding")
)

// RetryError indicates an operation failed on every attempt.
// Err is the cause of the last attempt.
type RetryError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// OperationError records the operation and file name of a failed command.
type OperationError struct {
	Op   string
	Name string
	Err  error
}

func (e *OperationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
