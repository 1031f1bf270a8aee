package port

// Gitignore decides whether a project-relative path is excluded by the project's
// ignore rules.
//
// relPath always uses forward slashes and never starts with "./" or "/".
type Gitignore interface {
	Ignores(relPath string) bool
}

// GitignoreFunc adapts an ordinary function to the Gitignore interface.
type GitignoreFunc func(relPath string) bool

// Ignores calls f(relPath).
func (f GitignoreFunc) Ignores(relPath string) bool {
	return f(relPath)
}
