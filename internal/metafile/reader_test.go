package metafile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/a3tai/mcp-emf-reader/internal/emf/emftest"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/emf/whitespace"
	"github.com/a3tai/mcp-emf-reader/internal/logging"
)

func testWhitespace() whitespace.Config {
	return whitespace.Config{
		LineBreakAny: whitespace.NewTagSet(record.EmfSelectObject),
		SpaceAny:     whitespace.NewTagSet(record.EmfIntersectClipRect),
	}
}

// invoiceEMF draws "Hello World", a line break and "!" plus one undecodable
// ExtTextOutW record
func invoiceEMF() []byte {
	return emftest.NewBuilder().
		ExtTextOutW("Hello").
		Records(record.EmfIntersectClipRect).
		ExtTextOutW("World").
		Record(record.EmfExtTextOutW, emftest.ExtTextOutWRaw(48, 100, 52)).
		Records(record.EmfSelectObject).
		SmallTextOut("!").
		Bytes()
}

func TestReader_ExtractTextCombined(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invoice.emf", invoiceEMF())

	r := NewReader(testMaxFileSize, WithWhitespace(testWhitespace()))
	result, err := r.ExtractText(EMFExtractTextRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, ModeCombined, result.Mode)
	assert.Equal(t, ContainerEMF, result.Container)
	assert.Equal(t, "Hello World\n!", result.Text)
	assert.Equal(t, 3, result.Fragments)
	assert.Equal(t, 8, result.Records)
	assert.Empty(t, result.DrawStrings)
	require.Len(t, result.FailedRecords, 1)
	assert.Equal(t, record.EmfExtTextOutW, result.FailedRecords[0].Tag)
}

func TestReader_ExtractTextStructured(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invoice.emf", invoiceEMF())

	r := NewReader(testMaxFileSize, WithWhitespace(testWhitespace()))
	result, err := r.ExtractText(EMFExtractTextRequest{Path: path, Mode: "Structured"})
	require.NoError(t, err)

	assert.Equal(t, ModeStructured, result.Mode)
	assert.Empty(t, result.Text)
	assert.Equal(t, []string{"Hello", "World"}, result.ExtTextOutWs)
	assert.Equal(t, "!", result.SmallTextOuts)
	assert.Equal(t, 3, result.Fragments)
}

func TestReader_ExtractTextFailureLoggingOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invoice.emf", invoiceEMF())

	off := false
	r := NewReader(testMaxFileSize)
	result, err := r.ExtractText(EMFExtractTextRequest{Path: path, LogFailed: &off})
	require.NoError(t, err)
	assert.Empty(t, result.FailedRecords)

	r = NewReader(testMaxFileSize, WithFailureLogging(false))
	result, err = r.ExtractText(EMFExtractTextRequest{Path: path})
	require.NoError(t, err)
	assert.Empty(t, result.FailedRecords)

	on := true
	result, err = r.ExtractText(EMFExtractTextRequest{Path: path, LogFailed: &on})
	require.NoError(t, err)
	assert.Len(t, result.FailedRecords, 1)
}

func TestReader_ExtractTextFromSpool(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "job.spl", emftest.WrapSPL(emftest.NewBuilder().DrawString("spooled").Bytes()))

	result, err := NewReader(testMaxFileSize).ExtractText(EMFExtractTextRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, ContainerSPL, result.Container)
	assert.Equal(t, "spooled", result.Text)
}

func TestReader_ExtractTextErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.emf", helloEMF())
	junk := writeFile(t, dir, "junk.emf", []byte("junk"))

	r := NewReader(testMaxFileSize)

	_, err := r.ExtractText(EMFExtractTextRequest{Path: path, Mode: "fancy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")

	_, err = r.ExtractText(EMFExtractTextRequest{Path: junk})
	assert.Error(t, err)
}

func TestReader_ExtractTextLogsSummary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.emf", helloEMF())

	logger, logs := logging.NewObserved(zapcore.InfoLevel)
	_, err := NewReader(testMaxFileSize, WithLogger(logger)).ExtractText(EMFExtractTextRequest{Path: path})
	require.NoError(t, err)

	entries := logs.FilterMessage("extracted text").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, path, fields["path"])
	assert.Equal(t, "combined", fields["mode"])
	assert.EqualValues(t, 1, fields["fragments"])
}

func TestReader_ExtractRecords(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invoice.emf", invoiceEMF())
	r := NewReader(testMaxFileSize)

	result, err := r.ExtractRecords(EMFExtractRecordsRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalCount)
	assert.False(t, result.Truncated)
	require.Len(t, result.Records, 8)

	assert.Equal(t, "EmfHeader", result.Records[0].Tag)
	assert.Equal(t, uint32(1), result.Records[0].Type)
	assert.Equal(t, "Hello", result.Records[1].Text)
	assert.Equal(t, "EmfIntersectClipRect", result.Records[2].Tag)
	assert.Empty(t, result.Records[2].Text)
	assert.NotEmpty(t, result.Records[4].Error)
	assert.Equal(t, "!", result.Records[6].Text)
	assert.Equal(t, "EmfEof", result.Records[7].Tag)
}

func TestReader_ExtractRecordsFilterAndLimit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invoice.emf", invoiceEMF())
	r := NewReader(testMaxFileSize)

	result, err := r.ExtractRecords(EMFExtractRecordsRequest{
		Path:  path,
		Tags:  []string{"EmfExtTextOutW"},
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.True(t, result.Truncated)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Records[0].Index)
	assert.Equal(t, 3, result.Records[1].Index)
	assert.Equal(t, "World", result.Records[1].Text)

	_, err = r.ExtractRecords(EMFExtractRecordsRequest{Path: path, Tags: []string{"NoSuchRecord"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tag filter")

	_, err = r.ExtractRecords(EMFExtractRecordsRequest{Path: path, Limit: MaxRecordLimit + 1})
	assert.Error(t, err)
}

func TestReader_ExtractRecordsEMFPlus(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plus.emf", emftest.NewBuilder().DrawString("plus").Bytes())

	result, err := NewReader(testMaxFileSize).ExtractRecords(EMFExtractRecordsRequest{Path: path})
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "DrawString", result.Records[1].Tag)
	assert.Equal(t, uint32(record.DrawString), result.Records[1].Type)
	assert.Equal(t, "plus", result.Records[1].Text)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ModeCombined},
		{in: "combined", want: ModeCombined},
		{in: " STRUCTURED ", want: ModeStructured},
		{in: "both", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			mode, err := parseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode.String())
		})
	}
}
