package metadata_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) (*metadata.Recorder, *metadata.Metrics, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	metrics := metadata.NewMetrics(reg)
	return metadata.NewRecorder(logger, metrics), metrics, &buf
}

func TestRecorder_RecordError(t *testing.T) {
	rec, metrics, buf := newTestRecorder(t)

	rec.RecordError(
		time.Now(),
		"probe",
		"Prober.Probe",
		metadata.CauseNetworkFailure,
		"timeout",
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, "https://example.com/a.jpg")},
	)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("probe", "network_failure")))
	assert.Contains(t, buf.String(), `"cause":"network_failure"`)
	assert.Contains(t, buf.String(), `"url":"https://example.com/a.jpg"`)
}

func TestRecorder_RecordFetch(t *testing.T) {
	rec, metrics, buf := newTestRecorder(t)

	rec.RecordFetch("https://example.com/a.jpg", 200, 15*time.Millisecond, 1024)
	rec.RecordFetch("https://example.com/b.jpg", 404, 5*time.Millisecond, 0)
	rec.RecordFetch("https://example.com/c.jpg", 0, time.Second, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FetchTotal.WithLabelValues("2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FetchTotal.WithLabelValues("4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FetchTotal.WithLabelValues("error")))
	assert.Contains(t, buf.String(), `"size_bytes":1024`)
}

func TestRecorder_RecordCacheAndTransform(t *testing.T) {
	rec, metrics, _ := newTestRecorder(t)

	rec.RecordCache("42", metadata.CacheHit, nil)
	rec.RecordCache("42", metadata.CacheHit, nil)
	rec.RecordCache("42", metadata.CacheMiss, nil)
	rec.RecordTransform("img", metadata.OutcomeTransformed)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheEvents.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheEvents.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TransformsTotal.WithLabelValues("img", "transformed")))
}

func TestNewRecorder_NilDependencies(t *testing.T) {
	rec := metadata.NewRecorder(nil, nil)
	require.NotNil(t, rec)
	assert.NotPanics(t, func() {
		rec.RecordTransform("iframe", metadata.OutcomeSkipped)
	})
}

func TestNoopSink_ImplementsSink(t *testing.T) {
	var sink metadata.MetadataSink = &metadata.NoopSink{}
	assert.NotPanics(t, func() {
		sink.RecordError(time.Now(), "x", "y", metadata.CauseUnknown, "z", nil)
		sink.RecordFetch("u", 200, 0, 0)
		sink.RecordCache("o", metadata.CacheFlush, nil)
		sink.RecordTransform("img", metadata.OutcomeCached)
	})
}

func TestErrorCause_String(t *testing.T) {
	assert.Equal(t, "unknown", metadata.CauseUnknown.String())
	assert.Equal(t, "storage_failure", metadata.CauseStorageFailure.String())
	assert.Equal(t, "decode_failure", metadata.CauseDecodeFailure.String())
	assert.Equal(t, "content_invalid", metadata.CauseContentInvalid.String())
}
