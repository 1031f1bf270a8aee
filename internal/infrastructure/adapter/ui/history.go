// Package ui provides the terminal adapters of the command checker.
package ui

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// History errors.
var (
	// ErrEmptyEntry is returned when adding an empty or whitespace-only line.
	ErrEmptyEntry = errors.New("history: entry cannot be empty")
	// ErrEmbeddedNewline is returned for entries that would break the one-line-per-entry file.
	ErrEmbeddedNewline = errors.New("history: entry cannot contain newlines")
	// ErrConsecutiveDuplicate is returned when the entry repeats the previous one.
	ErrConsecutiveDuplicate = errors.New("history: consecutive duplicate entry")
)

const (
	historyFileMode = 0o600
	historyDirMode  = 0o700
)

// History keeps the command lines typed into the checker shell and persists
// them to a file, one line per entry.
//
// File errors never surface: when the file cannot be read or written the
// history simply lives in memory.
type History struct {
	mu         sync.RWMutex
	path       string
	maxEntries int
	entries    []string
}

// NewHistory loads history from path. An empty path keeps history in memory.
// maxEntries <= 0 keeps every entry.
func NewHistory(path string, maxEntries int) *History {
	h := &History{
		path:       ExpandHome(path),
		maxEntries: max(maxEntries, 0),
	}
	h.load()
	return h
}

// Path returns the expanded history file path.
func (h *History) Path() string {
	return h.path
}

// Add appends a trimmed command line.
func (h *History) Add(entry string) error {
	entry = strings.TrimSpace(entry)
	switch {
	case entry == "":
		return ErrEmptyEntry
	case strings.ContainsAny(entry, "\r\n"):
		return ErrEmbeddedNewline
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return ErrConsecutiveDuplicate
	}
	h.entries = append(h.entries, entry)

	if h.trim() {
		h.rewrite()
	} else {
		h.append(entry)
	}
	return nil
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// trim drops the oldest entries beyond maxEntries and reports whether it did.
// Must be called with mu held.
func (h *History) trim() bool {
	if h.maxEntries == 0 || len(h.entries) <= h.maxEntries {
		return false
	}
	h.entries = h.entries[len(h.entries)-h.maxEntries:]
	return true
}

func (h *History) load() {
	if h.path == "" {
		return
	}
	f, err := os.Open(h.path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, line)
		}
	}
	h.trim()
}

func (h *History) open(flag int) *os.File {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), historyDirMode); err != nil {
		return nil
	}
	f, err := os.OpenFile(h.path, flag|os.O_CREATE|os.O_WRONLY, historyFileMode)
	if err != nil {
		return nil
	}
	return f
}

func (h *History) append(entry string) {
	f := h.open(os.O_APPEND)
	if f == nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(entry + "\n")
}

func (h *History) rewrite() {
	f := h.open(os.O_TRUNC)
	if f == nil {
		return
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, entry := range h.entries {
		_, _ = w.WriteString(entry + "\n")
	}
	_ = w.Flush()
}

// ExpandHome expands "~" and "~/..." to the current user's home directory.
// Other paths, including "~user", are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
