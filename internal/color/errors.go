package color

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
)

type SampleErrorCause string

const (
	ErrCauseCodecUnavailable = "codec unavailable"
	ErrCauseNotSampleable    = "format not sampled"
	ErrCauseFetchFailed      = "fetch failed"
	ErrCauseDecodeFailed     = "decode failed"
	ErrCauseTransparent      = "fully transparent"
)

type SampleError struct {
	Message   string
	Retryable bool
	Cause     SampleErrorCause
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("color sample error: %s: %s", e.Cause, e.Message)
}

func (e *SampleError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapSampleErrorToMetadataCause(err *SampleError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseFetchFailed:
		return metadata.CauseNetworkFailure
	case ErrCauseDecodeFailed, ErrCauseTransparent:
		return metadata.CauseDecodeFailure
	default:
		return metadata.CauseUnknown
	}
}
