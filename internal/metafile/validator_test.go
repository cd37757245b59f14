package metafile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-emf-reader/internal/emf/emftest"
	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
)

const testMaxFileSize = 10 * 1024 * 1024

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func helloEMF() []byte {
	return emftest.NewBuilder().ExtTextOutW("Hello").Bytes()
}

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	emf := writeFile(t, dir, "page.emf", helloEMF())
	spool := writeFile(t, dir, "job.spl", emftest.WrapSPL(helloEMF()))
	junk := writeFile(t, dir, "junk.emf", []byte("definitely not a metafile"))
	brokenSpool := writeFile(t, dir, "broken.spl", []byte{0, 0, 1, 0, 0xff, 0xff, 0, 0})

	v := NewValidator(testMaxFileSize)

	tests := []struct {
		name          string
		path          string
		wantValid     bool
		wantContainer Container
		wantMessage   string
	}{
		{name: "emf", path: emf, wantValid: true, wantContainer: ContainerEMF, wantMessage: "3 records"},
		{name: "spool", path: spool, wantValid: true, wantContainer: ContainerSPL, wantMessage: "3 records"},
		{name: "junk", path: junk, wantMessage: "valid EMF header"},
		{name: "broken spool", path: brokenSpool, wantMessage: "metafile size"},
		{name: "missing", path: filepath.Join(dir, "missing.emf"), wantMessage: "does not exist"},
		{name: "empty path", path: "", wantMessage: "cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateFile(EMFValidateFileRequest{Path: tt.path})
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.wantContainer, result.Container)
			assert.Contains(t, result.Message, tt.wantMessage)
		})
	}
}

func TestValidator_OpenTagsErrorsWithFile(t *testing.T) {
	dir := t.TempDir()
	junk := writeFile(t, dir, "junk.emf", []byte("definitely not a metafile"))

	_, err := NewValidator(testMaxFileSize).open(junk)
	require.Error(t, err)
	assert.ErrorIs(t, err, emferrors.ErrSourceLoadFailure)

	var e *emferrors.EMFError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, junk, e.FilePath)
}

func TestValidator_ValidateFileInfo(t *testing.T) {
	dir := t.TempDir()
	emf := writeFile(t, dir, "page.emf", helloEMF())
	empty := writeFile(t, dir, "empty.emf", nil)
	text := writeFile(t, dir, "notes.txt", []byte("hello"))

	v := NewValidator(16)

	stat := func(path string) os.FileInfo {
		info, err := os.Stat(path)
		require.NoError(t, err)
		return info
	}

	err := v.ValidateFileInfo(emf, stat(emf))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")

	err = v.ValidateFileInfo(empty, stat(empty))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file is empty")

	err = v.ValidateFileInfo(text, stat(text))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an EMF or SPL file")

	err = v.ValidateFileInfo(dir, stat(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	assert.NoError(t, NewValidator(testMaxFileSize).ValidateFileInfo(emf, stat(emf)))
}

func TestValidator_IsValidMetafile(t *testing.T) {
	dir := t.TempDir()
	v := NewValidator(testMaxFileSize)

	assert.True(t, v.IsValidMetafile(writeFile(t, dir, "page.emf", helloEMF())))
	assert.False(t, v.IsValidMetafile(writeFile(t, dir, "bad.emf", []byte("bad"))))
	assert.False(t, v.IsValidMetafile(filepath.Join(dir, "missing.emf")))
}

func TestIsMetafileName(t *testing.T) {
	assert.True(t, IsMetafileName("page.emf"))
	assert.True(t, IsMetafileName("PAGE.EMF"))
	assert.True(t, IsMetafileName("/var/spool/00012.SPL"))
	assert.False(t, IsMetafileName("page.wmf"))
	assert.False(t, IsMetafileName("emf"))
}

func TestDetectContainer(t *testing.T) {
	emf := helloEMF()
	spool := emftest.WrapSPL(emf)

	assert.Equal(t, ContainerEMF, DetectContainer("page.emf", emf))
	assert.Equal(t, ContainerSPL, DetectContainer("page.spl", spool))
	// content wins over the extension
	assert.Equal(t, ContainerEMF, DetectContainer("page.spl", emf))
	assert.Equal(t, ContainerSPL, DetectContainer("page.emf", spool))
	assert.Equal(t, ContainerSPL, DetectContainer("page.spl", []byte("??")))
	assert.Equal(t, ContainerEMF, DetectContainer("page.emf", []byte("??")))
}
