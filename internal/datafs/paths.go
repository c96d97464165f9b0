package datafs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid data path")

// Clean validates a data file path and returns its absolute, cleaned form.
// The same file must always map to the same lock.
func Clean(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if filepath.Base(abs) == string(filepath.Separator) {
		return "", ErrInvalidPath
	}
	return abs, nil
}

// LockPath is the sibling file used for cross-process locking.
func LockPath(path string) string {
	return path + ".lock"
}

// FilePerm returns the permission bits of an existing file, or def when the
// file does not exist.
func FilePerm(path string, def os.FileMode) (os.FileMode, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return def, nil
		}
		return 0, err
	}
	return st.Mode().Perm(), nil
}
