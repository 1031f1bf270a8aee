// Package gitignore implements the domain Gitignore port with the ignore rules
// of a project: the root .gitignore, nested .gitignore files, and
// .git/info/exclude. Patterns follow git's rules: "#" comments, "!" negation,
// a trailing "/" for directories only, and patterns containing "/" anchored to
// the directory of their file. Globs, including "**", are matched with
// doublestar.
package gitignore

import (
	"bufio"
	"code-agent-guard/internal/domain/port"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the per-directory ignore file.
const FileName = ".gitignore"

// ErrInvalidPattern is returned by AddPatterns for globs doublestar rejects.
var ErrInvalidPattern = errors.New("invalid gitignore pattern")

type rule struct {
	base     string // directory of the defining file, relative to the root; "" for the root
	pattern  string // doublestar glob relative to base
	negate   bool
	dirOnly  bool
	original string
}

// Matcher answers whether project-relative paths are ignored. It is read-only
// after loading and safe for concurrent use.
type Matcher struct {
	root  string
	files port.FileInspector
	rules []rule
}

var _ port.Gitignore = (*Matcher)(nil)

// NewMatcher returns a Matcher without rules for the project at root. files is
// used to tell directories from files for directory-only patterns; nil treats
// every final path component as a file.
func NewMatcher(root string, files port.FileInspector) *Matcher {
	return &Matcher{root: root, files: files}
}

// Load walks root and collects the rules of every .gitignore below it, skipping
// directories that are already ignored and hidden directories.
func Load(root string, files port.FileInspector) (*Matcher, error) {
	m := NewMatcher(root, files)

	if err := m.loadFile(filepath.Join(root, ".git", "info", "exclude"), ""); err != nil {
		return nil, err
	}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}

		if rel != "" && (strings.HasPrefix(d.Name(), ".") || m.match(rel, true)) {
			return filepath.SkipDir
		}
		return m.loadFile(filepath.Join(p, FileName), rel)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules from %s: %w", root, err)
	}
	return m, nil
}

func (m *Matcher) loadFile(name, base string) error {
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	// Invalid globs in existing files are skipped, as git does.
	for _, line := range lines {
		_ = m.addPattern(base, line)
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// AddPatterns adds rules as if they were lines of a .gitignore in the directory
// base (relative to the root, "" for the root itself).
func (m *Matcher) AddPatterns(base string, lines ...string) error {
	var errs []error
	for _, line := range lines {
		if err := m.addPattern(base, line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Matcher) addPattern(base, line string) error {
	r, ok := parseRule(strings.Trim(path.Clean("/"+base), "/"), line)
	if !ok {
		return nil
	}
	if !doublestar.ValidatePattern(r.pattern) {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, line)
	}
	m.rules = append(m.rules, r)
	return nil
}

func parseRule(base, line string) (rule, bool) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasSuffix(line, `\ `) {
		line = strings.TrimRight(line, " \t")
	}
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	r := rule{base: base, original: line}
	switch {
	case strings.HasPrefix(line, "!"):
		r.negate = true
		line = line[1:]
	case strings.HasPrefix(line, `\!`), strings.HasPrefix(line, `\#`):
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if line == "" {
		return rule{}, false
	}

	// A slash anywhere but at the end anchors the pattern to base.
	if strings.Contains(line, "/") {
		r.pattern = strings.TrimPrefix(line, "/")
	} else {
		r.pattern = "**/" + line
	}
	return r, true
}

// Ignores implements port.Gitignore. A path is ignored when it or one of its
// parent directories matches; a negated pattern cannot re-include a path whose
// parent directory is ignored.
func (m *Matcher) Ignores(relPath string) bool {
	relPath = strings.Trim(path.Clean("/"+filepath.ToSlash(relPath)), "/")
	if relPath == "" {
		return false
	}

	segments := strings.Split(relPath, "/")
	for i := 1; i < len(segments); i++ {
		if m.match(strings.Join(segments[:i], "/"), true) {
			return true
		}
	}
	return m.match(relPath, m.isDir(relPath))
}

func (m *Matcher) isDir(relPath string) bool {
	if m.files == nil {
		return false
	}
	return m.files.IsDirectory(filepath.Join(m.root, filepath.FromSlash(relPath)))
}

// match applies the rules to one path; the last matching rule wins.
func (m *Matcher) match(relPath string, isDir bool) bool {
	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		candidate := relPath
		if r.base != "" {
			if !strings.HasPrefix(relPath, r.base+"/") {
				continue
			}
			candidate = strings.TrimPrefix(relPath, r.base+"/")
		}
		if ok, _ := doublestar.Match(r.pattern, candidate); ok {
			ignored = !r.negate
		}
	}
	return ignored
}

// Patterns returns the loaded patterns in the order they apply, prefixed with
// the directory of their file.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		if r.base == "" {
			out[i] = r.original
			continue
		}
		out[i] = r.base + ": " + r.original
	}
	return out
}
