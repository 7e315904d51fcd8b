package cache

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
)

type CacheErrorCause string

const (
	ErrCauseLoadFailure    = "load failed"
	ErrCauseCorruptTable   = "corrupt table"
	ErrCauseEncodeFailure  = "encode failed"
	ErrCausePersistFailure = "persist failed"
	ErrCauseDeleteFailure  = "delete failed"
)

// CacheError is a persistence failure. The fragment cache never returns it
// to callers; it is recorded and processing continues uncached.
type CacheError struct {
	Message   string
	Retryable bool
	Cause     CacheErrorCause
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s: %s", e.Cause, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapCacheErrorToMetadataCause(err *CacheError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseLoadFailure, ErrCausePersistFailure, ErrCauseDeleteFailure:
		return metadata.CauseStorageFailure
	case ErrCauseCorruptTable, ErrCauseEncodeFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
