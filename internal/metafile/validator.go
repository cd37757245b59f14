package metafile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-emf-reader/internal/emf/enumerator"
	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/emf/spl"
)

// SupportedExtensions lists the file extensions the service accepts
var SupportedExtensions = []string{".emf", ".spl"}

// Validator handles metafile validation and loading
type Validator struct {
	maxFileSize int64
	cache       *MetafileCache // optional
}

// NewValidator creates a new validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// source is a metafile loaded from disk
type source struct {
	path      string
	container Container
	info      os.FileInfo
	metafile  *enumerator.Metafile
}

// ValidateFile checks that a file can be opened as an EMF or SPL metafile
func (v *Validator) ValidateFile(req EMFValidateFileRequest) (*EMFValidateFileResult, error) {
	result := &EMFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	src, err := v.open(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation failures are reported in the result
	}

	result.Valid = true
	result.Container = src.container
	result.Message = fmt.Sprintf("%d records", src.metafile.Len())
	return result, nil
}

// IsValidMetafile performs a quick check to see if a file opens as a metafile
func (v *Validator) IsValidMetafile(filePath string) bool {
	_, err := v.open(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without reading the file
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !IsMetafileName(filePath) {
		return fmt.Errorf("file is not an EMF or SPL file: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// open validates path, reads it and opens the metafile it holds, slicing it
// out of the spool container first when needed
func (v *Validator) open(filePath string) (*source, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return nil, err
	}

	if v.cache != nil {
		if src, ok := v.cache.get(filePath, fileInfo); ok {
			return src, nil
		}
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	container := DetectContainer(filePath, data)
	emf := data
	if container == ContainerSPL {
		if emf, err = spl.ExtractEMF(data); err != nil {
			return nil, withFile(err, filePath)
		}
	}

	m, err := enumerator.Open(emf)
	if err != nil {
		return nil, withFile(err, filePath)
	}

	src := &source{
		path:      filePath,
		container: container,
		info:      fileInfo,
		metafile:  m,
	}
	if v.cache != nil {
		v.cache.put(filePath, src)
	}
	return src, nil
}

// IsMetafileName reports whether name has a supported extension
func IsMetafileName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// DetectContainer decides whether data is a bare EMF or a spool file. The
// content wins over the extension.
func DetectContainer(filePath string, data []byte) Container {
	switch {
	case len(data) >= 4 && binary.LittleEndian.Uint32(data) == uint32(record.EmfHeader):
		return ContainerEMF
	case spl.IsSpool(data):
		return ContainerSPL
	case strings.EqualFold(filepath.Ext(filePath), ".spl"):
		return ContainerSPL
	default:
		return ContainerEMF
	}
}

func withFile(err error, filePath string) error {
	var e *emferrors.EMFError
	if errors.As(err, &e) {
		e.WithFile(filePath)
	}
	return err
}
