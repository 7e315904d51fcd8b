package probe

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
)

type ProbeErrorCause string

const (
	ErrCauseFetchFailed       = "fetch failed"
	ErrCauseDecodeFailed      = "decode failed"
	ErrCauseInvalidDimensions = "invalid dimensions"
	ErrCauseNoStrategy        = "no strategy available"
	ErrCauseInvalidURL        = "invalid url"
)

type ProbeError struct {
	Message   string
	Retryable bool
	Cause     ProbeErrorCause
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe error: %s: %s", e.Cause, e.Message)
}

// Severity is always recoverable: missing dimensions skip the tag, they
// never stop a render.
func (e *ProbeError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *ProbeError) IsRetryable() bool {
	return e.Retryable
}

func mapProbeErrorToMetadataCause(err *ProbeError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseFetchFailed:
		return metadata.CauseNetworkFailure
	case ErrCauseDecodeFailed, ErrCauseInvalidDimensions:
		return metadata.CauseDecodeFailure
	case ErrCauseInvalidURL:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
