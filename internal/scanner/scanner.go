package scanner

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultAppsDir is where system-wide application descriptors live
const DefaultAppsDir = "/usr/share/applications"

// DescriptorExt is the file extension of application descriptors
const DescriptorExt = ".desktop"

// Source is one descriptor to be loaded: an identifier and a way to read it
type Source interface {
	ID() string                    // Descriptor identifier (file name)
	Path() string                  // Location for error messages, may be empty
	Open() (io.ReadCloser, error) // Opens the descriptor content
}

// fileSource is a descriptor backed by a file on disk
type fileSource struct {
	path string
}

func (f fileSource) ID() string   { return filepath.Base(f.path) }
func (f fileSource) Path() string { return f.path }

func (f fileSource) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// FileSource returns a Source reading the descriptor at path
func FileSource(path string) Source {
	return fileSource{path: path}
}

// memSource is an in-memory descriptor
type memSource struct {
	id      string
	content []byte
}

func (m memSource) ID() string   { return m.id }
func (m memSource) Path() string { return "" }

func (m memSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.content)), nil
}

// MemSource returns a Source serving content from memory
func MemSource(id, content string) Source {
	return memSource{id: id, content: []byte(content)}
}

// MemSources builds sources from an id -> content map, sorted by id
func MemSources(files map[string]string) []Source {
	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sources := make([]Source, 0, len(ids))
	for _, id := range ids {
		sources = append(sources, MemSource(id, files[id]))
	}
	return sources
}

// Scanner enumerates application descriptors in a directory
type Scanner struct {
	dir     string
	homeDir string
	logger  *slog.Logger
}

// New creates a new Scanner for dir. An empty dir means DefaultAppsDir.
func New(dir string, logger *slog.Logger) *Scanner {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultAppsDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	homeDir, _ := os.UserHomeDir()
	s := &Scanner{
		homeDir: homeDir,
		logger:  logger,
	}
	s.dir = s.expandPath(dir)
	return s
}

// Dir returns the directory being scanned
func (s *Scanner) Dir() string {
	return s.dir
}

// Scan returns a Source for every *.desktop file directly inside the
// directory, ordered by file name. Subdirectories are not descended into.
func (s *Scanner) Scan() ([]Source, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read applications directory: %w", err)
	}

	var sources []Source
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), DescriptorExt) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if s.isDir(path) {
			continue
		}

		sources = append(sources, FileSource(path))
	}

	s.logger.Debug("scanned applications directory", "dir", s.dir, "descriptors", len(sources))
	return sources, nil
}

// expandPath expands ~ to home directory
func (s *Scanner) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(s.homeDir, path[2:])
	}
	return path
}

// isDir follows symlinks, so a linked descriptor counts as a file
func (s *Scanner) isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Dangling link; let the loader report it
		return false
	}
	return info.IsDir()
}
