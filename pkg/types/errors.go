package types

import (
	"errors"
	"fmt"
)

// Lifecycle and repository errors. Mutation paths roll back before any of
// these surface, so the store never shows a partially applied change.
var (
	ErrNotFound              = errors.New("issue not found")
	ErrInvalidTransition     = errors.New("illegal status transition")
	ErrIneligibleForDeletion = errors.New("only open issues can be deleted")
	ErrUnknownStatus         = errors.New("unknown status")
)

// Storage Handle errors.
var (
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrTransactionConflict = errors.New("transaction already active")
	ErrSchemaCorrupt       = errors.New("store schema cannot be reconciled")
	ErrInvalidBackup       = errors.New("backup failed validation")
)

// Config validation errors.
var (
	ErrDataDirEmpty = errors.New("data_dir must not be empty")
)

// ValidationError reports a field or capacity-rule violation. No store
// mutation occurs when one is returned; callers re-prompt and retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
