// Package metrics exports extraction counters to Prometheus.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/emf/session"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the extraction collectors. It implements session.Observer.
type Metrics struct {
	RecordsTotal        *prometheus.CounterVec
	FragmentsTotal      *prometheus.CounterVec
	DecodeFailuresTotal *prometheus.CounterVec
	ExtractionsTotal    *prometheus.CounterVec
	ExtractionDuration  *prometheus.HistogramVec
}

var _ session.Observer = (*Metrics)(nil)

// NewMetrics registers the collectors on the default registry once and
// returns the shared instance.
//
// Metrics:
//   - emf_records_total{class} - records enumerated, class is "emf" or "emf_plus"
//   - emf_fragments_total{kind} - text fragments decoded per record kind
//   - emf_decode_failures_total{kind} - malformed text records per record kind
//   - emf_extractions_total{mode,outcome} - traversals by mode and outcome
//   - emf_extraction_duration_seconds{mode} - traversal latency
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics(promauto.With(prometheus.DefaultRegisterer))
	})
	return globalMetrics
}

// NewMetricsWithRegistry registers a fresh set of collectors on reg
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetrics(promauto.With(reg))
}

func newMetrics(factory promauto.Factory) *Metrics {
	return &Metrics{
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emf_records_total",
				Help: "Total number of metafile records enumerated",
			},
			[]string{"class"},
		),
		FragmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emf_fragments_total",
				Help: "Total number of text fragments decoded",
			},
			[]string{"kind"},
		),
		DecodeFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emf_decode_failures_total",
				Help: "Total number of text records that failed to decode",
			},
			[]string{"kind"},
		),
		ExtractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emf_extractions_total",
				Help: "Total number of extraction traversals",
			},
			[]string{"mode", "outcome"},
		),
		ExtractionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emf_extraction_duration_seconds",
				Help:    "Duration of extraction traversals in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"mode"},
		),
	}
}

// RecordSeen counts an enumerated record
func (m *Metrics) RecordSeen(tag record.Tag) {
	m.RecordsTotal.WithLabelValues(recordClass(tag)).Inc()
}

// FragmentDecoded counts a decoded text fragment
func (m *Metrics) FragmentDecoded(tag record.Tag) {
	m.FragmentsTotal.WithLabelValues(tag.String()).Inc()
}

// DecodeFailed counts a malformed text record
func (m *Metrics) DecodeFailed(tag record.Tag) {
	m.DecodeFailuresTotal.WithLabelValues(tag.String()).Inc()
}

// ExtractionDone counts a finished traversal and observes its duration
func (m *Metrics) ExtractionDone(mode session.Mode, elapsed time.Duration, err error) {
	m.ExtractionsTotal.WithLabelValues(mode.String(), Outcome(err)).Inc()
	m.ExtractionDuration.WithLabelValues(mode.String()).Observe(elapsed.Seconds())
}

// Outcome maps a traversal error to a low-cardinality label value
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch emferrors.TypeOf(err) {
	case emferrors.ErrorTypeNotLoaded:
		return "not_loaded"
	case emferrors.ErrorTypeSourceLoadFailure:
		return "load_failure"
	case emferrors.ErrorTypeOutOfRange:
		return "out_of_range"
	default:
		return "error"
	}
}

func recordClass(tag record.Tag) string {
	if tag.IsEMFPlus() {
		return "emf_plus"
	}
	return "emf"
}
