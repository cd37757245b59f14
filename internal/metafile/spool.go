package metafile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-emf-reader/internal/emf/enumerator"
	"github.com/a3tai/mcp-emf-reader/internal/emf/spl"
)

// Spool writes the metafile carried by a spool file to disk
type Spool struct {
	validator *Validator
	logger    *zap.Logger
}

// NewSpool creates a spool extractor with the specified constraints
func NewSpool(maxFileSize int64, logger *zap.Logger) *Spool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spool{
		validator: NewValidator(maxFileSize),
		logger:    logger,
	}
}

// ExtractEMF slices the metafile out of a spool file and writes it next to
// the spool file, or to req.OutputPath when given. An existing output file
// is overwritten.
func (s *Spool) ExtractEMF(req SPLExtractEMFRequest) (*SPLExtractEMFResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file does not exist: %s", req.Path)
		}
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := s.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	emf, err := spl.ExtractEMFFile(req.Path)
	if err != nil {
		return nil, err
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = DefaultEMFPath(req.Path)
	}
	if filepath.Clean(outputPath) == filepath.Clean(req.Path) {
		return nil, fmt.Errorf("output path must differ from the spool file: %s", outputPath)
	}

	if err := os.WriteFile(outputPath, emf, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write metafile: %w", err)
	}

	result := &SPLExtractEMFResult{
		Path:       req.Path,
		OutputPath: outputPath,
		Size:       len(emf),
	}

	// an unparsable payload is still written and reported as invalid
	if m, err := enumerator.Open(emf); err != nil {
		result.Message = err.Error()
	} else {
		result.Valid = true
		result.Message = fmt.Sprintf("%d records", m.Len())
	}

	s.logger.Info("extracted metafile from spool",
		zap.String("path", req.Path),
		zap.String("output", outputPath),
		zap.Int("size", len(emf)),
		zap.Bool("valid", result.Valid),
	)

	return result, nil
}

// DefaultEMFPath replaces the extension of a spool path with .emf
func DefaultEMFPath(splPath string) string {
	return strings.TrimSuffix(splPath, filepath.Ext(splPath)) + ".emf"
}
