// Package file provides the local file system implementation of the domain
// FileInspector port. The permission engine uses it to confirm that a skills
// script exists and is a regular file before exempting it from matching.
//
// Example usage:
//
//	fi := file.NewLocalFileInspector()
//	if fi.IsRegularFile("/project/skills/fmt/run.sh") {
//		fmt.Println("script exists")
//	}
package file

import (
	"code-agent-guard/internal/domain/port"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Errors describing why a path was not inspected.
var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrRelativePath   = errors.New("path is not absolute")
)

// PathValidationError provides detailed context about path validation failures.
type PathValidationError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *PathValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("path validation failed for '%s': %s (cause: %v)", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("path validation failed for '%s': %s", e.Path, e.Reason)
}

func (e *PathValidationError) Unwrap() error {
	return e.Cause
}

// LocalFileInspector answers existence and type questions with os.Stat.
// Symlinks are followed, so a link to a regular file counts as a regular file.
// It holds no state and is safe for concurrent use.
type LocalFileInspector struct{}

// NewLocalFileInspector creates a new LocalFileInspector.
func NewLocalFileInspector() *LocalFileInspector {
	return &LocalFileInspector{}
}

var _ port.FileInspector = (*LocalFileInspector)(nil)

// ValidatePath rejects paths the inspector never stats: empty, relative, or
// containing NUL bytes.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return &PathValidationError{Path: path, Reason: "empty path", Cause: ErrInvalidPath}
	case strings.ContainsRune(path, 0):
		return &PathValidationError{Path: path, Reason: "contains null byte", Cause: ErrInvalidPath}
	case !filepath.IsAbs(path):
		return &PathValidationError{Path: path, Reason: "must be absolute", Cause: ErrRelativePath}
	}
	return nil
}

func (fi *LocalFileInspector) stat(path string) (os.FileInfo, bool) {
	if ValidatePath(path) != nil {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	return info, true
}

// IsRegularFile implements port.FileInspector.
func (fi *LocalFileInspector) IsRegularFile(absPath string) bool {
	info, ok := fi.stat(absPath)
	return ok && info.Mode().IsRegular()
}

// IsDirectory implements port.FileInspector.
func (fi *LocalFileInspector) IsDirectory(absPath string) bool {
	info, ok := fi.stat(absPath)
	return ok && info.IsDir()
}
