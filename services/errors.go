package services

import (
	"errors"
	"fmt"

	"github.com/vpoint-tv/vpoint-api/utils/validation"
)

// ValidationError reports malformed or missing input on a named field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an operation targeting an id that does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// PermissionError reports a privileged operation attempted without the required role
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s requires super admin", e.Action)
}

// StorageError wraps a failure of the persistence layer
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// storageErr wraps err unless it is already one of the typed errors above
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		nf *NotFoundError
		pe *PermissionError
		se *StorageError
	)
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &pe) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// validateInput runs struct tag validation and reports the first failure
func validateInput(in interface{}) error {
	if err := validation.ValidateStruct(in); err != nil {
		field, msg := validation.FirstError(err)
		return &ValidationError{Field: field, Message: msg}
	}
	return nil
}
