package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirName is the directory next to the snapshotted file that holds the copies
const DirName = "archive"

// Snapshot copies path into an archive directory next to it, with a
// timestamp in the name, and returns the copy's path. The original file is
// left in place.
func Snapshot(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file does not exist: %s", path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	archiveDir := filepath.Join(filepath.Dir(path), DirName)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, timestamp, ext))

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, timestamp, ext))
	}

	if err := os.WriteFile(archivePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return archivePath, nil
}
