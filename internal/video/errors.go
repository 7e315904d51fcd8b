package video

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
)

type ResolveErrorCause string

const (
	ErrCauseUnrecognized = "unrecognized provider"
	ErrCauseLookupFailed = "metadata lookup failed"
	ErrCauseMissingThumb = "thumbnail missing from metadata"
	ErrCauseNoFetcher    = "no fetcher configured"
)

type ResolveError struct {
	Message   string
	Retryable bool
	Cause     ResolveErrorCause
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("video resolve error: %s: %s", e.Cause, e.Message)
}

func (e *ResolveError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapResolveErrorToMetadataCause(err *ResolveError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseLookupFailed:
		return metadata.CauseNetworkFailure
	case ErrCauseMissingThumb:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
