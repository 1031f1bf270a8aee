package safety

import (
	"strings"
)

const (
	testProject = AbsolutePath("/project")
	testHome    = AbsolutePath("/home/dev")
)

// fakeFiles is an in-memory FileInspector.
type fakeFiles struct {
	regular map[string]bool
	dirs    map[string]bool
}

func newFakeFiles(regular ...string) *fakeFiles {
	f := &fakeFiles{regular: map[string]bool{}, dirs: map[string]bool{}}
	for _, p := range regular {
		f.regular[p] = true
	}
	return f
}

func (f *fakeFiles) IsRegularFile(absPath string) bool { return f.regular[absPath] }
func (f *fakeFiles) IsDirectory(absPath string) bool   { return f.dirs[absPath] }

// fakeGitignore ignores exact paths and everything under the given prefixes.
type fakeGitignore struct {
	paths    map[string]bool
	prefixes []string
}

func (g fakeGitignore) Ignores(relPath string) bool {
	if g.paths[relPath] {
		return true
	}
	for _, prefix := range g.prefixes {
		if relPath == prefix || strings.HasPrefix(relPath, prefix+"/") {
			return true
		}
	}
	return false
}

func testOptions() Options {
	return Options{
		Cwd:     testProject,
		HomeDir: testHome,
		Gitignore: fakeGitignore{
			paths:    map[string]bool{"nested.txt": true},
			prefixes: []string{"dist", "node_modules"},
		},
	}
}
