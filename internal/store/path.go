package store

import (
	"os"
	"path/filepath"
)

// DefaultDataRoot returns the root directory for local data.
// Defaults to ~/.camperpack, falls back to ./.camperpack if the home
// directory is unavailable.
func DefaultDataRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".camperpack")
	}
	return filepath.Join(home, ".camperpack")
}

// DefaultDBPath returns the full path to the local database file.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataRoot(), "camperpack.db")
}
