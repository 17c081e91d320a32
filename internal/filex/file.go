// Package filex resolves and prepares local directories.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const dataDirPerm os.FileMode = 0o700

// EnsureDataDir creates dir if needed and returns its absolute path. A
// relative dir is resolved against the working directory. The directory
// holds the local database with password hashes, so an existing one is
// narrowed to owner-only access.
func EnsureDataDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("data dir is not set")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, dataDirPerm); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if fi.Mode().Perm() != dataDirPerm {
		if err := os.Chmod(abs, dataDirPerm); err != nil {
			return "", fmt.Errorf("chmod %s: %w", abs, err)
		}
	}
	return abs, nil
}
