package safety

import (
	"errors"
	"path/filepath"
	"strings"
)

// AbsolutePath is a cleaned, absolute filesystem path.
type AbsolutePath string

// RelativePath is a cleaned path relative to a project root, using forward
// slashes. The project root itself is ".".
type RelativePath string

// UnresolvedPath is a path exactly as the user typed it.
type UnresolvedPath string

var (
	// ErrNotAbsolute is returned by NewAbsolutePath for relative input.
	ErrNotAbsolute = errors.New("path is not absolute")

	// ErrUnknownHome is returned when a path starts with "~" and no home directory is known.
	ErrUnknownHome = errors.New("home directory is unknown")

	// ErrOtherUserHome is returned for "~user" paths, which are never resolved.
	ErrOtherUserHome = errors.New("~user paths are not supported")
)

// NewAbsolutePath validates and cleans p.
func NewAbsolutePath(p string) (AbsolutePath, error) {
	if !filepath.IsAbs(p) {
		return "", ErrNotAbsolute
	}
	return AbsolutePath(filepath.Clean(p)), nil
}

// MustAbsolutePath is NewAbsolutePath for trusted input. It panics on relative paths.
func MustAbsolutePath(p string) AbsolutePath {
	abs, err := NewAbsolutePath(p)
	if err != nil {
		panic(err)
	}
	return abs
}

func (p AbsolutePath) String() string {
	return string(p)
}

// Resolve resolves u against p. Absolute input replaces p entirely.
func (p AbsolutePath) Resolve(u UnresolvedPath) AbsolutePath {
	s := string(u)
	if filepath.IsAbs(s) {
		return AbsolutePath(filepath.Clean(s))
	}
	return AbsolutePath(filepath.Join(string(p), s))
}

// RelativeTo returns p relative to root. ok is false when p is neither root nor
// one of its descendants.
func (p AbsolutePath) RelativeTo(root AbsolutePath) (RelativePath, bool) {
	rel, err := filepath.Rel(string(root), string(p))
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return RelativePath(filepath.ToSlash(rel)), true
}

// IsWithin reports whether p is root or a descendant of root.
func (p AbsolutePath) IsWithin(root AbsolutePath) bool {
	_, ok := p.RelativeTo(root)
	return ok
}

// Segments splits the path into its components. The root "." has none.
func (r RelativePath) Segments() []string {
	if r == "." || r == "" {
		return nil
	}
	return strings.Split(string(r), "/")
}

// IsRoot reports whether r denotes the project root itself.
func (r RelativePath) IsRoot() bool {
	return r == "." || r == ""
}

// expandHome replaces a leading "~" or "~/" with home.
func expandHome(u UnresolvedPath, home AbsolutePath) (UnresolvedPath, error) {
	s := string(u)
	if !strings.HasPrefix(s, "~") {
		return u, nil
	}
	if s != "~" && !strings.HasPrefix(s, "~/") {
		return "", ErrOtherUserHome
	}
	if home == "" {
		return "", ErrUnknownHome
	}
	return UnresolvedPath(string(home) + s[1:]), nil
}
