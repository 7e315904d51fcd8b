package store

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseUnavailable  = "backend unavailable"
	ErrCauseReadFailure  = "read failed"
	ErrCauseWriteFailure = "write failed"
	ErrCauseInvalidKey   = "invalid key"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
	Backend   string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %s: %s", e.Backend, e.Cause, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func newStoreError(backend string, cause StoreErrorCause, err error) *StoreError {
	return &StoreError{
		Message:   err.Error(),
		Retryable: cause != ErrCauseInvalidKey,
		Cause:     cause,
		Backend:   backend,
	}
}
