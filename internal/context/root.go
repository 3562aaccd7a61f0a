package context

import (
	"os"
	"path/filepath"
)

// FindProjectRoot walks up from start looking for a .git directory and
// returns the directory holding it. When no repository marker is found the
// start directory itself is returned.
func FindProjectRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	dir := abs
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}
