package metafile

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-emf-reader/internal/emf/emftest"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/metrics"
)

func TestStats_GetFileStats(t *testing.T) {
	dir := t.TempDir()
	data := emftest.NewBuilder().
		Description("writer\x00report\x00").
		Records(record.EmfSaveDC, record.EmfSaveDC, record.EmfRestoreDC).
		ExtTextOutW("total").
		DrawString("plus").
		Record(record.EmfExtTextOutW, emftest.ExtTextOutWRaw(48, 100, 52)).
		Bytes()
	path := writeFile(t, dir, "report.emf", data)

	result, err := NewStats(testMaxFileSize).GetFileStats(EMFStatsFileRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, ContainerEMF, result.Container)
	assert.Equal(t, int64(len(data)), result.Size)
	assert.Equal(t, len(data), result.MetafileSize)
	assert.Equal(t, "writer / report", result.Header.Description)
	assert.True(t, result.HasEMFPlus)
	assert.Equal(t, 8, result.EMFRecords)
	assert.Equal(t, 8, result.Records)
	assert.Equal(t, 2, result.TextFragments)
	assert.Equal(t, 1, result.FailedRecords)
	assert.Greater(t, result.ReplayedBytes, int64(0))
	assert.NotEmpty(t, result.ModifiedDate)

	require.NotEmpty(t, result.RecordsByKind)
	// ties are ordered by record type
	assert.Equal(t, TagCount{Tag: "EmfSaveDC", Count: 2}, result.RecordsByKind[0])
	assert.Equal(t, TagCount{Tag: "EmfExtTextOutW", Count: 2}, result.RecordsByKind[1])

	total := 0
	for _, kc := range result.RecordsByKind {
		total += kc.Count
	}
	assert.Equal(t, result.Records, total)
}

func TestStats_GetFileStatsFeedsObserver(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.emf", helloEMF())

	m := metrics.NewMetricsWithRegistry(prometheus.NewRegistry())
	_, err := NewStats(testMaxFileSize, WithObserver(m)).GetFileStats(EMFStatsFileRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.RecordsTotal.WithLabelValues("emf")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("structured", "ok")))
}

func TestStats_GetFileStatsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "junk.emf", []byte("junk"))

	_, err := NewStats(testMaxFileSize).GetFileStats(EMFStatsFileRequest{Path: path})
	assert.Error(t, err)
}

func TestSortedCounts(t *testing.T) {
	got := sortedCounts(map[record.Tag]int{
		record.EmfRestoreDC:    1,
		record.EmfSaveDC:       1,
		record.EmfSelectObject: 4,
	})
	assert.Equal(t, []TagCount{
		{Tag: "EmfSelectObject", Count: 4},
		{Tag: "EmfSaveDC", Count: 1},
		{Tag: "EmfRestoreDC", Count: 1},
	}, got)

	assert.Empty(t, sortedCounts(nil))
}
