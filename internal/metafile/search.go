package metafile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Search handles metafile discovery operations
type Search struct {
	maxFileSize int64
	validator   *Validator
}

// NewSearch creates a new search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// isPathWithinDirectory checks if a path is within the specified directory
func (s *Search) isPathWithinDirectory(path, directory string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absDir, err := filepath.Abs(directory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve directory: %w", err)
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to evaluate symlinks: %w", err)
		}
		realPath = absPath
	}

	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate directory symlinks: %w", err)
	}

	realPath = filepath.Clean(realPath)
	realDir = filepath.Clean(realDir)
	if realPath == realDir {
		return true, nil
	}

	if !strings.HasSuffix(realDir, string(filepath.Separator)) {
		realDir += string(filepath.Separator)
	}
	return strings.HasPrefix(realPath, realDir), nil
}

// walk visits every supported, size-valid metafile below directory. Hidden
// directories and entries escaping directory through symlinks are skipped.
// visit returning false ends the walk.
func (s *Search) walk(directory string, visit func(FileInfo) bool) (string, error) {
	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory path: %w", err)
	}

	err = filepath.WalkDir(absDirectory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}

		withinDir, err := s.isPathWithinDirectory(path, absDirectory)
		if err != nil || !withinDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsMetafileName(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // entry vanished during the walk
		}

		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // invalid files are left out of listings
		}

		if !visit(newFileInfo(path, info)) {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return absDirectory, fmt.Errorf("error walking directory: %w", err)
	}

	return absDirectory, nil
}

// SearchDirectory lists metafiles below a directory whose name matches the
// query
func (s *Search) SearchDirectory(req EMFSearchDirectoryRequest) (*EMFSearchDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	files := []FileInfo{}

	absDirectory, err := s.walk(req.Directory, func(fi FileInfo) bool {
		if s.matchesQuery(fi.Name, query) {
			files = append(files, fi)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return &EMFSearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: req.Query,
	}, nil
}

// FindMetafilesInDirectory finds every metafile below a directory
func (s *Search) FindMetafilesInDirectory(directory string) ([]FileInfo, error) {
	return s.FindMetafilesInDirectoryLimited(directory, 0)
}

// FindMetafilesInDirectoryLimited finds at most limit metafiles below a
// directory. A limit of zero means no limit.
func (s *Search) FindMetafilesInDirectoryLimited(directory string, limit int) ([]FileInfo, error) {
	files := []FileInfo{}
	_, err := s.walk(directory, func(fi FileInfo) bool {
		files = append(files, fi)
		return limit <= 0 || len(files) < limit
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// CountMetafilesInDirectory counts the metafiles below a directory
func (s *Search) CountMetafilesInDirectory(directory string) (int, error) {
	files, err := s.FindMetafilesInDirectory(directory)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// SearchByPattern lists metafiles whose base name matches a glob pattern
func (s *Search) SearchByPattern(directory, pattern string) (*EMFSearchDirectoryResult, error) {
	if pattern == "" {
		return s.SearchDirectory(EMFSearchDirectoryRequest{Directory: directory})
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	files := []FileInfo{}
	absDirectory, err := s.walk(directory, func(fi FileInfo) bool {
		if matched, _ := filepath.Match(pattern, fi.Name); matched {
			files = append(files, fi)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return &EMFSearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: pattern,
	}, nil
}

// GetDirectoryStats summarizes the metafiles below a directory
func (s *Search) GetDirectoryStats(req EMFStatsDirectoryRequest) (*EMFStatsDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	result := &EMFStatsDirectoryResult{}
	smallest := int64(-1)

	absDirectory, err := s.walk(req.Directory, func(fi FileInfo) bool {
		result.TotalFiles++
		result.TotalSize += fi.Size
		if fi.Container == ContainerSPL {
			result.SPLFiles++
		} else {
			result.EMFFiles++
		}

		if fi.Size > result.LargestFileSize {
			result.LargestFileSize = fi.Size
			result.LargestFileName = fi.Name
		}
		if smallest < 0 || fi.Size < smallest {
			smallest = fi.Size
			result.SmallestFileName = fi.Name
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	result.Directory = absDirectory
	if result.TotalFiles > 0 {
		result.SmallestFileSize = smallest
		result.AverageFileSize = result.TotalSize / int64(result.TotalFiles)
	}

	return result, nil
}

// matchesQuery performs fuzzy matching on the filename. query is already
// lower case.
func (s *Search) matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	name := strings.ToLower(filename)
	if strings.Contains(name, query) {
		return true
	}

	words := splitIntoWords(strings.TrimSuffix(name, filepath.Ext(name)))
	for _, queryWord := range splitIntoWords(query) {
		found := false
		for _, word := range words {
			if strings.Contains(word, queryWord) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// splitIntoWords splits a string on common filename separators
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}

func newFileInfo(path string, info os.FileInfo) FileInfo {
	container := ContainerEMF
	if strings.EqualFold(filepath.Ext(path), ".spl") {
		container = ContainerSPL
	}
	return FileInfo{
		Path:         path,
		Name:         info.Name(),
		Size:         info.Size(),
		Container:    container,
		ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
	}
}
