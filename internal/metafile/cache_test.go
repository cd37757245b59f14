package metafile

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-emf-reader/internal/emf/emftest"
)

// fakeSource builds a cache value whose file info reports size and mtime
func fakeSource(t *testing.T, path string, size int64, mod time.Time) *source {
	t.Helper()
	return &source{path: path, info: fakeInfo{size: size, mod: mod}}
}

type fakeInfo struct {
	os.FileInfo
	size int64
	mod  time.Time
}

func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) ModTime() time.Time { return f.mod }

func TestMetafileCache_LRU(t *testing.T) {
	now := time.Now()
	c := NewMetafileCache(2)

	a := fakeSource(t, "a.emf", 10, now)
	b := fakeSource(t, "b.emf", 20, now)
	d := fakeSource(t, "d.emf", 30, now)

	c.put("a.emf", a)
	c.put("b.emf", b)
	assert.Equal(t, []string{"b.emf", "a.emf"}, c.Keys())

	got, ok := c.get("a.emf", a.info)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, []string{"a.emf", "b.emf"}, c.Keys())

	// b is now least recently used
	c.put("d.emf", d)
	assert.Equal(t, []string{"d.emf", "a.emf"}, c.Keys())
	_, ok = c.get("b.emf", b.info)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.Capacity)
	assert.InDelta(t, 50.0, stats.HitRate, 0.001)

	c.Clear()
	assert.Empty(t, c.Keys())
	assert.Zero(t, c.Stats().Hits)
}

func TestMetafileCache_StaleEntry(t *testing.T) {
	now := time.Now()
	c := NewMetafileCache(0)
	assert.Equal(t, DefaultCacheCapacity, c.Stats().Capacity)

	c.put("a.emf", fakeSource(t, "a.emf", 10, now))

	_, ok := c.get("a.emf", fakeInfo{size: 11, mod: now})
	assert.False(t, ok)
	assert.Empty(t, c.Keys())

	c.put("a.emf", fakeSource(t, "a.emf", 10, now))
	_, ok = c.get("a.emf", fakeInfo{size: 10, mod: now.Add(time.Second)})
	assert.False(t, ok)
}

func TestValidator_UsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.emf", helloEMF())

	v := NewValidator(testMaxFileSize)
	v.cache = NewMetafileCache(4)

	first, err := v.open(path)
	require.NoError(t, err)
	second, err := v.open(path)
	require.NoError(t, err)
	assert.Same(t, first.metafile, second.metafile)
	assert.Equal(t, int64(1), v.cache.Stats().Hits)

	// a rewritten file is parsed again
	bigger := emftest.NewBuilder().ExtTextOutW("Hello").ExtTextOutW("again").Bytes()
	require.NoError(t, os.WriteFile(path, bigger, 0o600))
	third, err := v.open(path)
	require.NoError(t, err)
	assert.NotSame(t, first.metafile, third.metafile)
	assert.Equal(t, 4, third.metafile.Len())
}
