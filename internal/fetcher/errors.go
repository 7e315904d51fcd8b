package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               = "timeout"
	ErrCauseNetworkFailure        = "network issues"
	ErrCauseReadResponseBodyError = "failed to read response body"
	ErrCauseBodyTooLarge          = "response body too large"
	ErrCauseRedirectLimitExceeded = "reached redirect limit"
	ErrCauseRequest4xx            = "4xx"
	ErrCauseRequestTooMany        = "too many requests"
	ErrCauseRequest5xx            = "5xx"
	ErrCauseInvalidURL            = "invalid url"
)

// FetchError is always SeverityRecoverable from the engine's point of
// view: a failed fetch skips a feature, it never aborts a render.
// Retryable only steers the retry loop.
type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout,
		ErrCauseNetworkFailure,
		ErrCauseReadResponseBodyError,
		ErrCauseRequest4xx,
		ErrCauseRequest5xx,
		ErrCauseRequestTooMany,
		ErrCauseRedirectLimitExceeded:
		return metadata.CauseNetworkFailure
	case ErrCauseBodyTooLarge, ErrCauseInvalidURL:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
