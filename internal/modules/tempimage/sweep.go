package tempimage

import (
	"os"
	"path/filepath"
	"time"
)

// Sweep removes regular files in dir whose modification time is before
// cutoff. A missing directory counts as nothing to remove.
func Sweep(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, ent.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
