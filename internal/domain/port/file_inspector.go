package port

// FileInspector answers the filesystem questions the permission engine needs.
// This port keeps the engine free of direct filesystem access so it can be tested
// with an in-memory implementation.
type FileInspector interface {
	// IsRegularFile reports whether absPath exists and is a regular file.
	// Symlinks are followed. Any stat error reports false.
	IsRegularFile(absPath string) bool

	// IsDirectory reports whether absPath exists and is a directory.
	IsDirectory(absPath string) bool
}
