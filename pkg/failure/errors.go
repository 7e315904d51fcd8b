package failure

import "errors"

type Severity int

// Severity classifies how far a failure propagates through the rewrite pipeline.
//
//   - SeverityFatal: the current unit of work (one tag) cannot be transformed
//     and must be left as-is.
//   - SeverityRecoverable: an optional feature is skipped (no color, no LQIP,
//     no cache) and processing continues.
//
// No severity ever aborts a whole Process call.
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

type ClassifiedError interface {
	error
	Severity() Severity
}

// IsRecoverable reports whether err carries SeverityRecoverable.
// Unclassified errors are treated as fatal for the unit of work.
func IsRecoverable(err error) bool {
	var classified ClassifiedError
	if errors.As(err, &classified) {
		return classified.Severity() == SeverityRecoverable
	}
	return false
}
