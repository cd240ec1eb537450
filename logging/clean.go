package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Retention is how long log files are kept by CleanOld.
const Retention = 7 * 24 * time.Hour

// CleanOld removes *.log files in dir last modified before now-maxAge. A
// missing dir is not an error.
func CleanOld(dir string, maxAge time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log dir %s: %w", dir, err)
	}

	cutoff := now.Add(-maxAge)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
