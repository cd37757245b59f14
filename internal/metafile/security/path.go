// Package security confines file access to the configured directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator checks that paths stay inside one root directory. Symlinks
// are resolved on both sides before comparing.
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at configuredDirectory. The
// directory does not have to exist yet; until it does, every path passes.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathValidator{root: configuredDirectory}, nil
}

// GetConfiguredDirectory returns the root as configured
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.root
}

func (v *PathValidator) rootExists() bool {
	_, err := os.Stat(v.root)
	return !os.IsNotExist(err)
}

// ValidatePath fails when path resolves outside the root
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a NUL byte")
	}

	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}
	return nil
}

// IsPathWithinDirectory reports whether path, and the file a symlink at
// path points to, are inside the root
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	if !v.rootExists() {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absRoot, err := filepath.Abs(v.root)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	roots := []string{filepath.Clean(absRoot)}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil && resolved != roots[0] {
		roots = append(roots, resolved)
	}

	candidates := []string{filepath.Clean(absPath)}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			return false, fmt.Errorf("failed to resolve symlink: %w", err)
		}
		candidates = append(candidates, resolved)
	}

	for _, candidate := range candidates {
		if !underAny(candidate, roots) {
			return false, nil
		}
	}
	return true, nil
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		if path == root {
			return true
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// NormalizePath joins relative paths onto the root and validates the result
func (v *PathValidator) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ValidateDirectory validates dirPath like ValidatePath and, when it exists,
// requires it to be a directory
func (v *PathValidator) ValidateDirectory(dirPath string) error {
	if err := v.ValidatePath(dirPath); err != nil {
		return err
	}
	if !v.rootExists() {
		return nil
	}

	info, err := os.Stat(dirPath)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return fmt.Errorf("cannot access directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("path is not a directory: %s", dirPath)
	}
	return nil
}
