package backup

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoBackup is returned when there is no copy to restore
var ErrNoBackup = errors.New("no backup available")

// RestoredFile represents a successfully restored file
type RestoredFile struct {
	SourcePath string
	DestPath   string
	Replaced   *BackedUpFile // Copy of the file that was overwritten, if any
}

// Latest returns the newest copy of the file at path
func (b *BackupManager) Latest(path string) (string, error) {
	copies, err := b.List(path)
	if err != nil {
		return "", err
	}
	if len(copies) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoBackup)
	}
	return copies[len(copies)-1], nil
}

// Restore puts the newest copy of dest back in place. The current dest is
// backed up first so a restore can itself be undone.
func (b *BackupManager) Restore(dest string) (*RestoredFile, error) {
	src, err := b.Latest(dest)
	if err != nil {
		return nil, err
	}

	// Read first: retention may prune src once dest is backed up
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	replaced, err := b.Backup(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to back up current file: %w", err)
	}

	if err := os.WriteFile(dest, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to restore: %w", err)
	}

	b.logger.Info("restored file", "path", dest, "from", src)
	return &RestoredFile{
		SourcePath: src,
		DestPath:   dest,
		Replaced:   replaced,
	}, nil
}
