package config

import (
	"errors"
	"os"
	"path/filepath"
)

// EnsureUserConfig returns path, writing Default there first when no file
// exists yet. created reports whether it did.
func EnsureUserConfig(path string) (created bool, err error) {
	_, err = os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := SaveAtomic(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}
