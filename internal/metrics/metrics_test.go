package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-emf-reader/internal/emf/emftest"
	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/emf/session"
)

func TestNewMetrics_Singleton(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	assert.Same(t, a, b)
}

func TestMetrics_ObservesSession(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	data := emftest.NewBuilder().
		ExtTextOutW("one").
		Record(record.EmfExtTextOutW, []byte{1, 2, 3, 4}).
		DrawString("two").
		Bytes()

	s := session.New(session.WithObserver(m))
	require.NoError(t, s.LoadBytes(data))
	_, err := s.ExtractCombined()
	require.NoError(t, err)

	// header, two EMF text records, EOF
	assert.Equal(t, float64(4), testutil.ToFloat64(m.RecordsTotal.WithLabelValues("emf")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RecordsTotal.WithLabelValues("emf_plus")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FragmentsTotal.WithLabelValues("EmfExtTextOutW")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FragmentsTotal.WithLabelValues("DrawString")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DecodeFailuresTotal.WithLabelValues("EmfExtTextOutW")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("combined", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ExtractionDuration))
}

func TestMetrics_ExtractionDone(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.ExtractionDone(session.ModeStructured, 2*time.Millisecond, nil)
	m.ExtractionDone(session.ModeStructured, time.Millisecond, errors.New("replay failed"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("structured", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("structured", "error")))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: "ok"},
		{err: emferrors.New(emferrors.ErrorTypeNotLoaded, "x"), want: "not_loaded"},
		{err: emferrors.New(emferrors.ErrorTypeSourceLoadFailure, "x"), want: "load_failure"},
		{err: emferrors.New(emferrors.ErrorTypeOutOfRange, "x"), want: "out_of_range"},
		{err: errors.New("other"), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}
