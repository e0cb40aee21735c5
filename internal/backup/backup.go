package backup

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mimesync/internal/mimeapps"
)

// timestampFormat sorts lexicographically in chronological order
const timestampFormat = "20060102-150405.000000000"

// BackupManager keeps timestamped copies of a file before it is replaced
type BackupManager struct {
	dir    string
	keep   int // 0 keeps every copy
	logger *slog.Logger
	now    func() time.Time
}

// BackedUpFile represents a successfully backed up file
type BackedUpFile struct {
	FilePath string
	DestPath string
	Size     int64
	Pruned   []string // Older copies removed by retention
}

// New creates a new BackupManager writing into dir
func New(dir string, keep int, logger *slog.Logger) *BackupManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupManager{
		dir:    dir,
		keep:   keep,
		logger: logger,
		now:    time.Now,
	}
}

// Backup copies path into the backup directory. A missing source is not an
// error; nothing is copied and a nil result is returned.
func (b *BackupManager) Backup(path string) (*BackedUpFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			b.logger.Debug("nothing to back up", "path", path)
			return nil, nil
		}
		return nil, err
	}

	destPath := filepath.Join(b.dir, copyPrefix(path)+b.now().Format(timestampFormat))
	if err := b.copyFile(path, destPath); err != nil {
		return nil, err
	}

	result := &BackedUpFile{
		FilePath: path,
		DestPath: destPath,
		Size:     info.Size(),
	}

	pruned, err := b.prune(path)
	if err != nil {
		return result, fmt.Errorf("backup succeeded but failed to prune old copies: %w", err)
	}
	result.Pruned = pruned

	b.logger.Info("backed up file", "path", path, "backup", destPath)
	return result, nil
}

// copyPrefix names the copies of path: the base name followed by a short
// digest of the absolute path, so same-named files in different
// directories never share copies
func copyPrefix(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	key := mimeapps.ShortDigest(mimeapps.Digest([]byte(path)))
	return filepath.Base(path) + "." + key + "."
}

// List returns existing copies of the file at path, oldest first
func (b *BackupManager) List(path string) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	prefix := copyPrefix(path)
	var copies []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		copies = append(copies, filepath.Join(b.dir, e.Name()))
	}
	sort.Strings(copies)
	return copies, nil
}

// prune removes the oldest copies beyond the retention count
func (b *BackupManager) prune(path string) ([]string, error) {
	if b.keep <= 0 {
		return nil, nil
	}

	copies, err := b.List(path)
	if err != nil {
		return nil, err
	}
	if len(copies) <= b.keep {
		return nil, nil
	}

	stale := copies[:len(copies)-b.keep]
	for _, p := range stale {
		if err := os.Remove(p); err != nil {
			return nil, err
		}
	}
	return stale, nil
}

// copyFile copies a file from src to dst, creating directories as needed
func (b *BackupManager) copyFile(src, dst string) error {
	// Create destination directory
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	// Preserve permissions
	srcInfo, err := os.Stat(src)
	if err == nil {
		os.Chmod(dst, srcInfo.Mode())
	}

	return nil
}
