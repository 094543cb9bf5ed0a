package storage

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/datafeed/errors"
)

// Translate converts a backend error into an AppError. Missing objects are
// final; other backend failures are retryable. Context errors pass through
// unchanged so callers can still match them with errors.Is.
func Translate(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.IsAppError(err) {
		return err
	}
	appErr := errors.StorageError(op, path, err)
	if stderrors.Is(err, ErrNotFound) {
		appErr.Retryable = false
		appErr.Message = "object not found"
	}
	return appErr
}

// IsNotFound reports whether err describes a missing object.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}
