package metafile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/emf/whitespace"
)

func TestServerInfo(t *testing.T) {
	dir := searchTree(t)
	ws := whitespace.Config{
		LineBreakAny: whitespace.NewTagSet(record.EmfDeleteObject, record.EmfSelectObject),
		SpaceAll:     whitespace.NewTagSet(record.EmfSaveDC),
	}

	svc, err := NewService(testMaxFileSize, dir, WithWhitespace(ws))
	require.NoError(t, err)

	result, err := svc.EMFServerInfo(context.Background(), "mcp-emf-reader", "1.2.3", dir)
	require.NoError(t, err)

	assert.Equal(t, "mcp-emf-reader", result.ServerName)
	assert.Equal(t, "1.2.3", result.Version)
	assert.Equal(t, dir, result.DefaultDirectory)
	assert.Equal(t, int64(testMaxFileSize), result.MaxFileSize)
	assert.Equal(t, SupportedExtensions, result.SupportedFormats)
	assert.Len(t, result.DirectoryContents, 4)
	assert.Contains(t, result.UsageGuidance, "emf_extract_text")
	assert.Contains(t, result.UsageGuidance, "10MB")

	assert.Equal(t, []string{"EmfSelectObject", "EmfDeleteObject"}, result.Whitespace.LineBreakAny)
	assert.Equal(t, []string{"EmfSaveDC"}, result.Whitespace.SpaceAll)
	assert.Nil(t, result.Whitespace.SpaceAny)
	assert.Equal(t, DefaultCacheCapacity, result.Cache.Capacity)

	toolNames := make([]string, 0, len(result.AvailableTools))
	for _, tool := range result.AvailableTools {
		toolNames = append(toolNames, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.NotEmpty(t, tool.Parameters)
	}
	assert.ElementsMatch(t, []string{
		"emf_extract_text", "emf_extract_records", "emf_validate_file", "emf_stats_file",
		"emf_search_directory", "emf_stats_directory", "spl_extract_emf", "emf_server_info",
	}, toolNames)
}

func TestServerInfo_OutsideDirectoryFallsBack(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(testMaxFileSize, dir)
	require.NoError(t, err)

	result, err := svc.EMFServerInfo(context.Background(), "s", "v", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, dir, result.DefaultDirectory)
	assert.Empty(t, result.DirectoryContents)
}

func TestServerInfo_CachesListing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "first.emf", helloEMF())

	svc, err := NewService(testMaxFileSize, dir)
	require.NoError(t, err)

	result, err := svc.EMFServerInfo(context.Background(), "s", "v", dir)
	require.NoError(t, err)
	require.Len(t, result.DirectoryContents, 1)

	writeFile(t, dir, "second.emf", helloEMF())
	result, err = svc.EMFServerInfo(context.Background(), "s", "v", dir)
	require.NoError(t, err)
	assert.Len(t, result.DirectoryContents, 1)
}

func TestDirectoryCache(t *testing.T) {
	c := NewDirectoryCache(time.Hour)
	assert.Nil(t, c.Get("/spool"))

	assert.True(t, c.TryStartScan("/spool"))
	assert.False(t, c.TryStartScan("/spool"))
	// a running scan is not a cached listing
	assert.Nil(t, c.Get("/spool"))

	c.Set("/spool", []FileInfo{{Name: "a.emf"}})
	entry := c.Get("/spool")
	require.NotNil(t, entry)
	assert.Len(t, entry.files, 1)

	c.FinishScan("/spool")
	assert.True(t, c.TryStartScan("/spool"))
	c.FinishScan("/spool")

	expired := NewDirectoryCache(time.Nanosecond)
	expired.Set("/spool", nil)
	time.Sleep(time.Millisecond)
	assert.Nil(t, expired.Get("/spool"))
	expired.Clear()
	assert.Zero(t, expired.Len())
}

func TestLazyDirectoryScanner(t *testing.T) {
	dir := searchTree(t)

	result, err := NewLazyDirectoryScanner(0, 0, 0).ScanDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"00017.spl", "invoice-2024-001.emf", "invoice_2024_002.EMF", "report.emf"},
		names(result.Files))
	assert.False(t, result.Truncated)

	result, err = NewLazyDirectoryScanner(0, 2, 0).ScanDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, result.Files, 2)
	assert.True(t, result.Truncated)

	result, err = NewLazyDirectoryScanner(1, 0, 0).ScanDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.NotContains(t, names(result.Files), "00017.spl")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLazyDirectoryScanner(0, 0, 0).ScanDirectory(ctx, filepath.Join(dir, "jobs"))
	assert.ErrorIs(t, err, context.Canceled)
}
