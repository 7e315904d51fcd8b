package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus collectors fed by Recorder.
type Metrics struct {
	FetchTotal      *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	CacheEvents     *prometheus.CounterVec
	TransformsTotal *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lazyload",
				Name:      "fetch_total",
				Help:      "Total number of outbound fetches by status class",
			},
			[]string{"status"},
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "lazyload",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of outbound fetches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CacheEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lazyload",
				Name:      "cache_events_total",
				Help:      "Fragment cache events",
			},
			[]string{"event"},
		),
		TransformsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lazyload",
				Name:      "transforms_total",
				Help:      "Matched tags by terminal outcome",
			},
			[]string{"tag", "outcome"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lazyload",
				Name:      "errors_total",
				Help:      "Recorded errors by package and cause",
			},
			[]string{"package", "cause"},
		),
	}
}

func statusClass(code int) string {
	switch {
	case code == 0:
		return "error"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
