package metadata

import (
	"log/slog"
	"time"
)

/*
Metadata Collected
- Outbound fetches (URL, status, duration, size)
- Fragment cache events per owner
- Terminal outcome per matched tag
- Classified errors

Determinism guarantees:
 - Metadata does not affect control flow
 - A failing or slow sink never changes rewritten output

Metadata is write-only.
No component may read metadata to influence rewrite decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		sizeBytes int,
	)

	RecordCache(ownerID string, event CacheEvent, attrs []Attribute)

	RecordTransform(tag string, outcome TransformOutcome)
}

/*
Recorder writes structured events to a slog.Logger and mirrors them into
Prometheus collectors. It must not:
- perform I/O decisions
- affect control flow
*/
type Recorder struct {
	logger  *slog.Logger
	metrics *Metrics
}

func NewRecorder(logger *slog.Logger, metrics *Metrics) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Recorder{
		logger:  logger.With(slog.String("component", "lazyload")),
		metrics: metrics,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	r.metrics.ErrorsTotal.WithLabelValues(packageName, cause.String()).Inc()

	args := []any{
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
		slog.String("error", errorString),
	}
	r.logger.Warn("lazyload error", append(args, attrArgs(attrs)...)...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	sizeBytes int,
) {
	r.metrics.FetchTotal.WithLabelValues(statusClass(httpStatus)).Inc()
	r.metrics.FetchDuration.Observe(duration.Seconds())

	r.logger.Debug("fetch",
		slog.String("url", fetchUrl),
		slog.Int("status", httpStatus),
		slog.Duration("duration", duration),
		slog.Int("size_bytes", sizeBytes),
	)
}

func (r *Recorder) RecordCache(ownerID string, event CacheEvent, attrs []Attribute) {
	r.metrics.CacheEvents.WithLabelValues(string(event)).Inc()

	args := []any{
		slog.String("owner", ownerID),
		slog.String("event", string(event)),
	}
	r.logger.Debug("fragment cache", append(args, attrArgs(attrs)...)...)
}

func (r *Recorder) RecordTransform(tag string, outcome TransformOutcome) {
	r.metrics.TransformsTotal.WithLabelValues(tag, string(outcome)).Inc()
}

func attrArgs(attrs []Attribute) []any {
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key), a.Value))
	}
	return args
}

// NoopSink, struct that implements metadata.MetadataSink but does nothing
// Engine (or Test) can decide whether to inject Recorder or NoopSink
// Purpose is to make metadata orthogonal

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	sizeBytes int,
) {
}

func (n *NoopSink) RecordCache(ownerID string, event CacheEvent, attrs []Attribute) {}

func (n *NoopSink) RecordTransform(tag string, outcome TransformOutcome) {}
