package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold filePath.
// Paths without a directory component and SQLite special names are left alone.
func EnsureParentDir(filePath string) (string, error) {
	if filePath == "" || filePath == ":memory:" {
		return "", nil
	}

	dir := filepath.Dir(filePath)
	if dir == "." {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
